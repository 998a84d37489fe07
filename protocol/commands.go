package protocol

import (
	"fmt"

	"github.com/moffa90/go-hella/canbus"
)

// WakeFrame returns the handshake request.
//
// Frame structure:
//
//	3F0#49 00 00 00 00 00 00 00
func WakeFrame() canbus.Frame {
	return canbus.NewFrame(RequestID, OpWake)
}

// SelectCmd selects a 16-bit register.
//
// Frame structure:
//
//	3F0#31 [REG_H] [REG_L] 00 00 00 00 00
func SelectCmd(register uint16) canbus.Frame {
	return canbus.NewFrame(RequestID, OpSelect, byte(register>>8), byte(register))
}

// ReadCmd selects a memory address, which makes the controller report its
// value on MemoryResponseID. The address must already be validated.
func ReadCmd(address byte) canbus.Frame {
	return SelectCmd(MemoryPage<<8 | uint16(address))
}

// WriteCmd writes value to the currently selected register.
//
// Frame structure:
//
//	3F0#57 00 00 [VALUE] 00 00 00 00
func WriteCmd(value byte) canbus.Frame {
	return canbus.NewFrame(RequestID, OpWrite, 0x00, 0x00, value)
}

// EndCmd closes a command sequence.
func EndCmd() canbus.Frame {
	return canbus.NewFrame(RequestID, OpEnd)
}

// ValidateAddress checks that address lies in 0x00-0x7F.
func ValidateAddress(op string, address int) error {
	if address < 0 || address > MaxAddress {
		return &ProtocolError{
			Kind:    KindInvalidParameter,
			Op:      op,
			Address: address,
			Err:     fmt.Errorf("address 0x%02X out of range 0x00-0x%02X", address, MaxAddress),
		}
	}
	return nil
}

// ValidateValue checks that value fits in one byte.
func ValidateValue(op string, value int) error {
	if value < 0 || value > 0xFF {
		return InvalidParameter(op, "value 0x%X out of range 0x00-0xFF", value)
	}
	return nil
}

// ValidatePosition checks that a limit position fits in 16 bits.
func ValidatePosition(op string, position int) error {
	if position < 0 || position > 0xFFFF {
		return InvalidParameter(op, "position 0x%X out of range 0x0000-0xFFFF", position)
	}
	return nil
}
