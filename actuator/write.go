package actuator

import (
	"context"
	"fmt"

	"github.com/moffa90/go-hella/protocol"
)

// WriteOption configures a single write.
type WriteOption func(*writeOptions)

type writeOptions struct {
	allowUnsafe bool
}

// AllowUnsafe permits writes to dangerous addresses (bus identifiers,
// interface configuration). Such a write can make the controller stop
// answering on the bus. The write is logged at warning level.
func AllowUnsafe() WriteOption {
	return func(o *writeOptions) {
		o.allowUnsafe = true
	}
}

// WriteByte performs a handshake and writes value to one memory address.
//
// Writes to a dangerous address fail with protocol.ErrInvalidParameter
// unless AllowUnsafe is given. All validation happens before any frame is
// sent.
//
// Example:
//
//	err := sess.WriteByte(ctx, 0x30, 0x42)
//	err = sess.WriteByte(ctx, 0x41, 0x01, actuator.AllowUnsafe())
func (s *Session) WriteByte(ctx context.Context, address, value int, opts ...WriteOption) error {
	const op = "write byte"

	var wo writeOptions
	for _, opt := range opts {
		opt(&wo)
	}

	if err := protocol.ValidateAddress(op, address); err != nil {
		return err
	}
	if err := protocol.ValidateValue(op, value); err != nil {
		return err
	}
	if protocol.IsDangerous(address) {
		if !wo.allowUnsafe {
			return &protocol.ProtocolError{
				Kind:    protocol.KindInvalidParameter,
				Op:      op,
				Address: address,
				Err: fmt.Errorf("address 0x%02X is dangerous (%s); writing it requires AllowUnsafe",
					address, protocol.DangerDescription(address)),
			}
		}
	}

	m, err := protocol.WriteByteTemplate.Render(protocol.Params{
		protocol.SlotAddress: byte(address),
		protocol.SlotValue:   byte(value),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if protocol.IsDangerous(address) {
		s.logWarn("writing dangerous address",
			"address", fmt.Sprintf("0x%02X", address),
			"function", protocol.DangerDescription(address),
			"value", fmt.Sprintf("0x%02X", value))
	}

	if err := s.handshake(ctx, op); err != nil {
		return err
	}
	if err := s.runMacro(ctx, op, m); err != nil {
		return err
	}

	s.logInfo("byte written", "address", fmt.Sprintf("0x%02X", address), "value", fmt.Sprintf("0x%02X", value))
	return nil
}

// SetMin writes the minimum position limit.
//
// The range byte is derived from the stored maximum, read in the same
// session. If the stored maximum is not above the new minimum, the variant's
// default range byte is written and a warning is logged.
func (s *Session) SetMin(ctx context.Context, position int) error {
	const op = "set min"

	if err := protocol.ValidatePosition(op, position); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.handshake(ctx, op); err != nil {
		return err
	}
	b, err := s.readBytes(ctx, op, protocol.AddrMaxHigh, protocol.AddrMaxLow)
	if err != nil {
		return err
	}
	stored := int(b[0])<<8 | int(b[1])

	rb := s.rangeByte(op, position, stored)
	return s.writeLimits(ctx, op, protocol.SetMinTemplate,
		protocol.LimitParams(uint16(position), uint16(stored), rb))
}

// SetMax writes the maximum position limit. The range byte is derived from
// the stored minimum, as in SetMin.
func (s *Session) SetMax(ctx context.Context, position int) error {
	const op = "set max"

	if err := protocol.ValidatePosition(op, position); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.handshake(ctx, op); err != nil {
		return err
	}
	b, err := s.readBytes(ctx, op, protocol.AddrMinHigh, protocol.AddrMinLow)
	if err != nil {
		return err
	}
	stored := int(b[0])<<8 | int(b[1])

	rb := s.rangeByte(op, stored, position)
	return s.writeLimits(ctx, op, protocol.SetMaxTemplate,
		protocol.LimitParams(uint16(stored), uint16(position), rb))
}

// SetMinMax writes both position limits and the range byte (max-min)/4.
// min must be below max.
//
// Example:
//
//	err := sess.SetMinMax(ctx, 0x0113, 0x0220)
func (s *Session) SetMinMax(ctx context.Context, minPos, maxPos int) error {
	const op = "set min max"

	if err := protocol.ValidatePosition(op, minPos); err != nil {
		return err
	}
	if err := protocol.ValidatePosition(op, maxPos); err != nil {
		return err
	}
	if minPos >= maxPos {
		return protocol.InvalidParameter(op, "min 0x%04X must be below max 0x%04X", minPos, maxPos)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.handshake(ctx, op); err != nil {
		return err
	}

	rb := s.rangeByte(op, minPos, maxPos)
	return s.writeLimits(ctx, op, protocol.SetMinMaxTemplate,
		protocol.LimitParams(uint16(minPos), uint16(maxPos), rb))
}

func (s *Session) rangeByte(op string, minPos, maxPos int) byte {
	rb, ok := s.config.Variant.RangeByte(minPos, maxPos)
	if !ok {
		s.logWarn("limits not usable for range byte, writing default",
			"op", op,
			"min", fmt.Sprintf("0x%04X", minPos),
			"max", fmt.Sprintf("0x%04X", maxPos),
			"range", rb)
	}
	return rb
}

func (s *Session) writeLimits(ctx context.Context, op string, t protocol.Template, params protocol.Params) error {
	m, err := t.Render(params)
	if err != nil {
		return err
	}
	if err := s.runMacro(ctx, op, m); err != nil {
		return err
	}

	s.logInfo("limits written", "op", op,
		"min", fmt.Sprintf("0x%02X%02X", params[protocol.SlotMinHigh], params[protocol.SlotMinLow]),
		"max", fmt.Sprintf("0x%02X%02X", params[protocol.SlotMaxHigh], params[protocol.SlotMaxLow]),
		"range", params[protocol.SlotRange])
	return nil
}
