package canbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCANFrameLayout(t *testing.T) {
	f := NewFrame(0x658, 0x00, 0x00, 0x02, 0x14, 0x00, 0x19, 0x00, 0x05)
	buf := marshalCANFrame(f)

	require.Len(t, buf, canFrameSize)
	assert.Equal(t, []byte{0x58, 0x06, 0x00, 0x00}, buf[0:4])
	assert.Equal(t, byte(8), buf[4])
	assert.Equal(t, f.Data[:], buf[8:16])

	got, err := unmarshalCANFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, f, got)
}

func TestUnmarshalCANFrameRejects(t *testing.T) {
	_, err := unmarshalCANFrame(make([]byte, 8))
	assert.Error(t, err, "short buffer")

	buf := marshalCANFrame(NewFrame(0x100))
	buf[3] |= 0x80 // CAN_EFF_FLAG
	_, err = unmarshalCANFrame(buf)
	assert.Error(t, err, "extended frame")
}

func TestUnmarshalCANFrameShortDLC(t *testing.T) {
	buf := marshalCANFrame(NewFrame(0x3E8, 0xAA, 0xBB, 0xCC))
	buf[4] = 1
	got, err := unmarshalCANFrame(buf)
	require.NoError(t, err)
	assert.Equal(t, NewFrame(0x3E8, 0xAA), got)
}
