package simulator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-hella/canbus"
	"github.com/moffa90/go-hella/protocol"
)

func send(t *testing.T, c *Controller, frames ...canbus.Frame) {
	t.Helper()
	for _, f := range frames {
		require.NoError(t, c.Send(f))
	}
}

func TestWakeAcknowledged(t *testing.T) {
	c := New()
	send(t, c, protocol.WakeFrame())

	f, ok, err := c.Receive(10 * time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, protocol.IsAck(f))
}

func TestWithoutAck(t *testing.T) {
	c := New(WithoutAck())
	send(t, c, protocol.WakeFrame())

	_, ok, err := c.Receive(10 * time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryReadAndSilence(t *testing.T) {
	c := New(WithSilenceAfter(2))
	mem := DefaultMemory()

	for addr := 0; addr < 3; addr++ {
		send(t, c, protocol.ReadCmd(byte(addr)))
		f, ok, err := c.Receive(10 * time.Millisecond)
		require.NoError(t, err)
		if addr == 2 {
			assert.False(t, ok, "address %d should be silent", addr)
			continue
		}
		require.True(t, ok)
		v, isMem := protocol.ParseMemoryResponse(f)
		require.True(t, isMem)
		assert.Equal(t, mem[addr], v)
	}
}

func TestWriteRequiresProgramMode(t *testing.T) {
	c := New()
	send(t, c, protocol.ReadCmd(0x30), protocol.WriteCmd(0x42))
	assert.Equal(t, DefaultMemory()[0x30], c.Memory()[0x30])

	m, err := protocol.WriteByteTemplate.Render(protocol.Params{
		protocol.SlotAddress: 0x30,
		protocol.SlotValue:   0x42,
	})
	require.NoError(t, err)
	send(t, c, m.Frames...)

	assert.Equal(t, byte(0x42), c.Memory()[0x30])
	assert.Equal(t, byte(protocol.ModeRun), c.Mode())
}

func TestCalibrationMovesToExtremes(t *testing.T) {
	c := New()
	require.Equal(t, uint16(688), c.Position())

	send(t, c, protocol.CalibrateDriveTemplate.MustRender().Frames...)
	assert.Equal(t, uint16(212), c.Position())

	send(t, c, protocol.CalibrateReleaseTemplate.MustRender().Frames...)
	assert.Equal(t, uint16(688), c.Position())

	send(t, c, protocol.CalibrateRestoreTemplate.MustRender().Frames...)
	assert.Equal(t, byte(protocol.ModeRun), c.Mode())
}

func TestBroadcast(t *testing.T) {
	c := New(WithBroadcast(5*time.Millisecond), WithPosition(0x0214), WithTelemetry(0x01, 30, 7))

	f, ok, err := c.Receive(50 * time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	s, isTelemetry := protocol.DecodePosition(f, protocol.VariantG222)
	require.True(t, isTelemetry)
	assert.Equal(t, uint16(0x0214), s.Position)
	assert.Equal(t, byte(0x01), s.Status)
	assert.Equal(t, byte(30), s.Temperature)
	assert.Equal(t, uint16(7), s.Load)
}

func TestInjectAndFailSends(t *testing.T) {
	c := New()
	c.Inject(canbus.NewFrame(0x100, 0xAA))

	f, ok, err := c.Receive(time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint32(0x100), f.ID)

	boom := errors.New("bus off")
	c.FailSends(boom)
	assert.ErrorIs(t, c.Send(protocol.WakeFrame()), boom)
	assert.Empty(t, c.Sent())
}

func TestClose(t *testing.T) {
	c := New()
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 2, c.CloseCount())

	assert.ErrorIs(t, c.Send(protocol.WakeFrame()), canbus.ErrClosed)
	_, _, err := c.Receive(time.Millisecond)
	assert.ErrorIs(t, err, canbus.ErrClosed)
}
