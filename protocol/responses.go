package protocol

import "github.com/moffa90/go-hella/canbus"

// IsAck reports whether frame is a handshake acknowledgment. Only the
// identifier and the signature byte are checked.
func IsAck(frame canbus.Frame) bool {
	return frame.ID == AckResponseID && frame.Data[7] == AckSignature
}

// ParseMemoryResponse returns the memory byte carried by a response frame.
// ok is false for frames on any other identifier.
func ParseMemoryResponse(frame canbus.Frame) (value byte, ok bool) {
	if frame.ID != MemoryResponseID {
		return 0, false
	}
	return frame.Data[0], true
}

// IsTelemetry reports whether frame is a position broadcast.
func IsTelemetry(frame canbus.Frame) bool {
	return frame.ID == PositionBroadcastID
}
