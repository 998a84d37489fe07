package actuator

import (
	"context"
	"time"

	"github.com/moffa90/go-hella/protocol"
)

// ReadCurrentPosition listens for the next telemetry broadcast. Nothing is
// sent. ok is false with a nil error when no broadcast arrived within
// timeout; a non-positive timeout uses the session Timeout.
//
// Example:
//
//	sample, ok, err := sess.ReadCurrentPosition(ctx, time.Second)
//	if err == nil && ok {
//	    fmt.Println(sample)
//	}
func (s *Session) ReadCurrentPosition(ctx context.Context, timeout time.Duration) (protocol.PositionSample, bool, error) {
	const op = "read position"

	if timeout <= 0 {
		timeout = s.config.Timeout
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return protocol.PositionSample{}, false, cancelled(op, err)
		}
		slice := s.pollSlice(deadline)
		if slice == 0 {
			return protocol.PositionSample{}, false, nil
		}

		f, ok, err := s.receive(op, slice)
		if err != nil {
			return protocol.PositionSample{}, false, err
		}
		if !ok {
			continue
		}
		if sample, isTelemetry := protocol.DecodePosition(f, s.config.Variant); isTelemetry {
			s.logDebug("position", "raw", sample.Position, "percent", sample.Percent,
				"status", sample.Status, "temperature", sample.Temperature, "load", sample.Load)
			return sample, true, nil
		}
	}
}

// collectTelemetry listens for window and returns the last sample seen and
// how many samples arrived.
func (s *Session) collectTelemetry(ctx context.Context, op string, window time.Duration) (protocol.PositionSample, int, error) {
	var last protocol.PositionSample
	n := 0

	deadline := time.Now().Add(window)
	for {
		if err := ctx.Err(); err != nil {
			return last, n, cancelled(op, err)
		}
		slice := s.pollSlice(deadline)
		if slice == 0 {
			return last, n, nil
		}

		f, ok, err := s.receive(op, slice)
		if err != nil {
			return last, n, err
		}
		if !ok {
			continue
		}
		if sample, isTelemetry := protocol.DecodePosition(f, s.config.Variant); isTelemetry {
			last = sample
			n++
		}
	}
}
