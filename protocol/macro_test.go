package protocol

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-hella/canbus"
)

// rows turns raw payloads into request frames.
func rows(payloads ...[]byte) []canbus.Frame {
	frames := make([]canbus.Frame, len(payloads))
	for i, p := range payloads {
		frames[i] = canbus.NewFrame(RequestID, p...)
	}
	return frames
}

var (
	s94  = []byte{0x31, 0x00, 0x94}
	s15D = []byte{0x31, 0x01, 0x5D}
	s161 = []byte{0x31, 0x01, 0x61}
	s163 = []byte{0x31, 0x01, 0x63}
	s80  = []byte{0x31, 0x00, 0x80}
	eop  = []byte{0x44}
)

func sm(addr byte) []byte { return []byte{0x31, 0x0C, addr} }
func w(v byte) []byte     { return []byte{0x57, 0x00, 0x00, v} }

func TestWriteByteTemplate(t *testing.T) {
	m, err := WriteByteTemplate.Render(Params{SlotAddress: 0x30, SlotValue: 0x42})
	require.NoError(t, err)

	want := rows(
		s94, s15D, w(0x05), s94, s94, w(0x2D),
		sm(0x30), w(0x42),
		s94, w(0x00), s94, w(0x8D),
		s15D, w(0x02), s94, eop,
	)
	if diff := cmp.Diff(want, m.Frames); diff != "" {
		t.Errorf("write byte frames mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "write byte", m.Name)
}

// limitTail is the part of every limit sequence after the second pair.
func limitTail(z byte) [][]byte {
	return [][]byte{
		s94, w(0x00), s94, w(0x8D),
		sm(0x22), w(z),
		s94, w(0x00), s94, w(0x8D),
		sm(0x23),
		s94, w(0x00), s94,
		s15D, w(0x02), s94, eop,
	}
}

func TestLimitTemplates(t *testing.T) {
	prologue := [][]byte{s94, s15D, w(0x05), s94, s94, w(0x2D)}
	unlock := [][]byte{s94, w(0x00), s94, w(0x2D)}
	params := LimitParams(0x0113, 0x0220, 0x43)

	build := func(parts ...[][]byte) []canbus.Frame {
		var all [][]byte
		for _, p := range parts {
			all = append(all, p...)
		}
		return rows(all...)
	}

	tests := []struct {
		name     string
		template Template
		want     []canbus.Frame
	}{
		{
			name:     "set min",
			template: SetMinTemplate,
			want: build(prologue,
				[][]byte{sm(0x03), w(0x01), sm(0x04), w(0x13)},
				unlock,
				[][]byte{sm(0x05), sm(0x06)},
				limitTail(0x43)),
		},
		{
			name:     "set max",
			template: SetMaxTemplate,
			want: build(prologue,
				[][]byte{sm(0x05), w(0x02), sm(0x06), w(0x20)},
				unlock,
				[][]byte{sm(0x05), sm(0x06)},
				limitTail(0x43)),
		},
		{
			name:     "set min max",
			template: SetMinMaxTemplate,
			want: build(prologue,
				[][]byte{sm(0x03), w(0x01), sm(0x04), w(0x13)},
				unlock,
				[][]byte{sm(0x05), w(0x02), sm(0x06), w(0x20)},
				limitTail(0x43)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.template.Render(params)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, m.Frames); diff != "" {
				t.Errorf("frames mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCalibrationTemplates(t *testing.T) {
	tests := []struct {
		name     string
		template Template
		want     []canbus.Frame
	}{
		{
			name:     "drive",
			template: CalibrateDriveTemplate,
			want: rows(s94, s15D, w(0x05), s94, s94, s163, w(0x28), s94, s94, s80, w(0x01),
				s94, s94, s161, w(0x01), s94, eop),
		},
		{
			name:     "release",
			template: CalibrateReleaseTemplate,
			want:     rows(s161, w(0x00), s94, s94, s80, w(0x00), s94, s94, s161, w(0x01), s94, eop),
		},
		{
			name:     "restore",
			template: CalibrateRestoreTemplate,
			want:     rows(s94, s161, w(0x00), s94, s94, s15D, w(0x02), s94, eop),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.template.MustRender().Frames); diff != "" {
				t.Errorf("frames mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderUnboundSlot(t *testing.T) {
	_, err := WriteByteTemplate.Render(Params{SlotAddress: 0x10})
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Contains(t, err.Error(), "value not bound")

	assert.Panics(t, func() { SetMinTemplate.MustRender() })
}

func TestLimitParams(t *testing.T) {
	p := LimitParams(0x0113, 0x0220, 0x43)
	assert.Equal(t, Params{
		SlotMinHigh: 0x01, SlotMinLow: 0x13,
		SlotMaxHigh: 0x02, SlotMaxLow: 0x20,
		SlotRange: 0x43,
	}, p)
}
