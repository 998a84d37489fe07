package actuator

import (
	"context"
	"time"

	"github.com/moffa90/go-hella/protocol"
)

// Ping performs one handshake. It is a connection test: a nil error means the
// controller answered the wake frame.
func (s *Session) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.handshake(ctx, "ping"); err != nil {
		return err
	}
	s.logInfo("controller answered")
	return nil
}

// handshake sends the wake frame and waits up to Timeout for the
// acknowledgment. Any other traffic received meanwhile is discarded.
func (s *Session) handshake(ctx context.Context, op string) error {
	start := time.Now()
	s.reportProgress(Progress{Phase: PhaseHandshake, Operation: op})

	if err := s.send(op, protocol.WakeFrame()); err != nil {
		return err
	}

	deadline := start.Add(s.config.Timeout)
	discarded := 0
	for {
		if err := ctx.Err(); err != nil {
			return cancelled(op, err)
		}
		slice := s.pollSlice(deadline)
		if slice == 0 {
			s.logError("no acknowledgment", "op", op, "timeout", s.config.Timeout, "discarded", discarded)
			return protocol.NoAcknowledgment(op)
		}

		f, ok, err := s.receive(op, slice)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if protocol.IsAck(f) {
			s.logDebug("acknowledged", "op", op, "elapsed", time.Since(start), "discarded", discarded)
			return nil
		}
		discarded++
	}
}
