package actuator

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-hella/protocol"
)

// ReadMemory performs a handshake and reads all 128 bytes of the
// configuration store in address order.
//
// If sink is non-nil each byte is written to it as soon as it is read, so a
// long read can be observed while it runs. The returned image is only valid
// when err is nil; on failure the zero image is returned and the sink holds a
// partial read that the caller must discard (see dump.File).
//
// Example:
//
//	f, _ := dump.Create(dump.DefaultFilename(time.Now()))
//	img, err := sess.ReadMemory(ctx, f)
//	if err != nil {
//	    f.Abort()
//	    return err
//	}
//	f.Commit()
func (s *Session) ReadMemory(ctx context.Context, sink io.Writer) (protocol.MemoryImage, error) {
	const op = "read memory"

	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	if err := s.handshake(ctx, op); err != nil {
		return protocol.MemoryImage{}, err
	}

	var img protocol.MemoryImage
	for n := 0; n < protocol.MemorySize; n++ {
		if err := ctx.Err(); err != nil {
			return protocol.MemoryImage{}, cancelled(op, err)
		}

		v, err := s.readByte(ctx, op, n)
		if err != nil {
			s.logError("memory read aborted", "address", fmt.Sprintf("0x%02X", n), "error", err)
			return protocol.MemoryImage{}, err
		}
		img[n] = v

		if sink != nil {
			if _, err := sink.Write([]byte{v}); err != nil {
				return protocol.MemoryImage{}, fmt.Errorf("%s: write sink: %w", op, err)
			}
		}

		s.reportProgress(Progress{
			Phase:       PhaseReading,
			Operation:   op,
			Step:        n + 1,
			TotalSteps:  protocol.MemorySize,
			Percentage:  float64(n+1) * 100 / protocol.MemorySize,
			ElapsedTime: time.Since(start),
		})
	}

	s.logInfo("memory read complete", "bytes", protocol.MemorySize, "elapsed", time.Since(start))
	s.reportProgress(Progress{
		Phase:       PhaseComplete,
		Operation:   op,
		Step:        protocol.MemorySize,
		TotalSteps:  protocol.MemorySize,
		Percentage:  100,
		ElapsedTime: time.Since(start),
	})
	return img, nil
}

// ReadAddresses performs a handshake and reads the given addresses in order.
// All addresses are validated before anything is sent.
func (s *Session) ReadAddresses(ctx context.Context, addresses ...int) ([]byte, error) {
	const op = "read addresses"

	for _, a := range addresses {
		if err := protocol.ValidateAddress(op, a); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.handshake(ctx, op); err != nil {
		return nil, err
	}
	return s.readBytes(ctx, op, addresses...)
}

// ReadMin reads the minimum position limit (addresses 3-4).
func (s *Session) ReadMin(ctx context.Context) (uint16, error) {
	b, err := s.ReadAddresses(ctx, protocol.AddrMinHigh, protocol.AddrMinLow)
	if err != nil {
		return 0, fmt.Errorf("read min: %w", err)
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadMax reads the maximum position limit (addresses 5-6).
func (s *Session) ReadMax(ctx context.Context) (uint16, error) {
	b, err := s.ReadAddresses(ctx, protocol.AddrMaxHigh, protocol.AddrMaxLow)
	if err != nil {
		return 0, fmt.Errorf("read max: %w", err)
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadMinMax reads both limits and the range byte in one session.
func (s *Session) ReadMinMax(ctx context.Context) (protocol.Limits, error) {
	b, err := s.ReadAddresses(ctx,
		protocol.AddrMinHigh, protocol.AddrMinLow,
		protocol.AddrMaxHigh, protocol.AddrMaxLow,
		protocol.AddrRange)
	if err != nil {
		return protocol.Limits{}, fmt.Errorf("read min max: %w", err)
	}
	return protocol.Limits{
		Min:   binary.BigEndian.Uint16(b[0:2]),
		Max:   binary.BigEndian.Uint16(b[2:4]),
		Range: b[4],
	}, nil
}

// readBytes reads addresses without a handshake. Callers hold s.mu and have
// already woken the controller.
func (s *Session) readBytes(ctx context.Context, op string, addresses ...int) ([]byte, error) {
	out := make([]byte, len(addresses))
	for i, a := range addresses {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(op, err)
		}
		v, err := s.readByte(ctx, op, a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// readByte selects address and waits up to ByteTimeout for its value on the
// memory response identifier. Other frames are discarded.
func (s *Session) readByte(ctx context.Context, op string, address int) (byte, error) {
	if err := s.send(op, protocol.ReadCmd(byte(address))); err != nil {
		return 0, err
	}

	deadline := time.Now().Add(s.config.ByteTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return 0, cancelled(op, err)
		}
		slice := s.pollSlice(deadline)
		if slice == 0 {
			return 0, protocol.MissingByte(op, address)
		}

		f, ok, err := s.receive(op, slice)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		if v, isMem := protocol.ParseMemoryResponse(f); isMem {
			s.logDebug("memory", "address", fmt.Sprintf("0x%02X", address), "value", fmt.Sprintf("0x%02X", v))
			return v, nil
		}
	}
}
