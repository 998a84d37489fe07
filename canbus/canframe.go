package canbus

import (
	"encoding/binary"
	"fmt"
)

// SocketCAN struct can_frame layout constants.
const (
	canFrameSize = 16
	canEffFlag   = 0x80000000
	canRtrFlag   = 0x40000000
	canErrFlag   = 0x20000000
)

// marshalCANFrame encodes a frame in the Linux struct can_frame layout
// (little-endian can_id, dlc, 3 pad bytes, 8 data bytes).
func marshalCANFrame(frame Frame) []byte {
	buf := make([]byte, canFrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], frame.ID&MaxStandardID)
	buf[4] = PayloadSize
	copy(buf[8:16], frame.Data[:])
	return buf
}

// unmarshalCANFrame decodes a struct can_frame. Extended, remote and error
// frames are reported as errors so callers can skip them.
func unmarshalCANFrame(buf []byte) (Frame, error) {
	if len(buf) < canFrameSize {
		return Frame{}, fmt.Errorf("can_frame needs %d bytes, got %d", canFrameSize, len(buf))
	}

	id := binary.LittleEndian.Uint32(buf[0:4])
	if id&(canEffFlag|canRtrFlag|canErrFlag) != 0 {
		return Frame{}, fmt.Errorf("unsupported can_id flags 0x%08X", id&(canEffFlag|canRtrFlag|canErrFlag))
	}

	dlc := int(buf[4])
	if dlc > PayloadSize {
		dlc = PayloadSize
	}
	return NewFrame(id&MaxStandardID, buf[8:8+dlc]...), nil
}
