package actuator

import (
	"context"
	"time"

	"github.com/moffa90/go-hella/protocol"
)

// RunMacro performs a handshake and sends a rendered macro. It is the escape
// hatch for sequences not covered by the named write operations.
//
// Example:
//
//	m, err := protocol.WriteByteTemplate.Render(protocol.Params{
//	    protocol.SlotAddress: 0x30,
//	    protocol.SlotValue:   0x42,
//	})
//	err = sess.RunMacro(ctx, m)
func (s *Session) RunMacro(ctx context.Context, m protocol.Macro) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.handshake(ctx, m.Name); err != nil {
		return err
	}
	return s.runMacro(ctx, m.Name, m)
}

// runMacro sends every frame of m in order, pausing MessageDelay after each,
// then discards trailing responses. Write acknowledgments are not validated;
// completion is inferred from the sequence finishing.
func (s *Session) runMacro(ctx context.Context, op string, m protocol.Macro) error {
	start := time.Now()
	total := len(m.Frames)

	s.logDebug("macro start", "op", op, "macro", m.Name, "frames", total)
	for i, f := range m.Frames {
		if err := ctx.Err(); err != nil {
			return cancelled(op, err)
		}
		if err := s.send(op, f); err != nil {
			return err
		}
		if err := sleep(ctx, s.config.MessageDelay); err != nil {
			return cancelled(op, err)
		}

		s.reportProgress(Progress{
			Phase:       PhaseWriting,
			Operation:   op,
			Step:        i + 1,
			TotalSteps:  total,
			Percentage:  float64(i+1) * 100 / float64(total),
			ElapsedTime: time.Since(start),
		})
	}

	drained, err := s.drain(op)
	if err != nil {
		return err
	}
	s.logDebug("macro done", "op", op, "macro", m.Name, "drained", drained, "elapsed", time.Since(start))
	return nil
}

// drain discards incoming frames until one poll comes back empty or
// DrainTimeout has passed, and returns how many were discarded.
func (s *Session) drain(op string) (int, error) {
	deadline := time.Now().Add(s.config.DrainTimeout)
	n := 0
	for {
		slice := s.pollSlice(deadline)
		if slice == 0 {
			return n, nil
		}
		_, ok, err := s.receive(op, slice)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
		n++
	}
}
