// Package protocol implements the wire grammar of the Hella electronic
// actuator configuration protocol.
//
// # Protocol Overview
//
// Every command is a standard CAN frame on RequestID (0x3F0) with an 8-byte
// payload whose first byte is an opcode:
//
//	Wake:   [0x49][00][00][00][00][00][00][00]
//	Select: [0x31][REG_H][REG_L][00][00][00][00][00]
//	Write:  [0x57][00][00][VALUE][00][00][00][00]
//	End:    [0x44][00][00][00][00][00][00][00]
//
// The controller answers a wake on AckResponseID (0x3EB) with payload byte 7
// equal to AckSignature (0x53). Selecting register 0x0C00|n reads memory
// address n; the value comes back in payload byte 0 on MemoryResponseID
// (0x3E8). Telemetry is broadcast unprompted on PositionBroadcastID (0x658).
//
// # Frame Builders
//
//	bus.Send(protocol.WakeFrame())
//	bus.Send(protocol.ReadCmd(0x22))
//
// # Macros
//
// Writes are multi-step sequences that walk the controller's internal state
// machine. They are described as Templates with named parameter slots and
// rendered into frames:
//
//	macro, err := protocol.SetMinTemplate.Render(protocol.LimitParams(0x0113, 0x0220, 0x43))
//
// # Error Handling
//
// Engine failures are reported as *ProtocolError. Match them by kind:
//
//	if errors.Is(err, protocol.ErrMissingByte) {
//	    var pe *protocol.ProtocolError
//	    errors.As(err, &pe)
//	    fmt.Printf("no answer at 0x%02X\n", pe.Address)
//	}
//
// # Variants
//
// Position scaling and the range byte divisor were measured on the G-222
// controller (VariantG222). Other controllers may need a different Variant.
package protocol
