package canbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    Config
		wantErr bool
	}{
		{
			name: "defaults to socketcan on can0",
			cfg:  Config{},
			want: Config{Interface: InterfaceSocketCAN, Channel: DefaultChannel, Bitrate: DefaultBitrate, TTYBaudrate: DefaultTTYBaudrate},
		},
		{
			name: "slcan keeps channel and bitrate",
			cfg:  Config{Interface: "SLCAN", Channel: "/dev/ttyACM0", Bitrate: 250000},
			want: Config{Interface: InterfaceSLCAN, Channel: "/dev/ttyACM0", Bitrate: 250000, TTYBaudrate: DefaultTTYBaudrate},
		},
		{
			name:    "slcan without channel",
			cfg:     Config{Interface: InterfaceSLCAN},
			wantErr: true,
		},
		{
			name:    "slcan with unsupported bitrate",
			cfg:     Config{Interface: InterfaceSLCAN, Channel: "/dev/ttyACM0", Bitrate: 333000},
			wantErr: true,
		},
		{
			name: "virtual",
			cfg:  Config{Interface: InterfaceVirtual},
			want: Config{Interface: InterfaceVirtual, Bitrate: DefaultBitrate, TTYBaudrate: DefaultTTYBaudrate},
		},
		{
			name:    "unknown interface",
			cfg:     Config{Interface: "pcan"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Normalize()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenRejectsVirtual(t *testing.T) {
	bus, err := Open(Config{Interface: InterfaceVirtual})
	assert.Nil(t, bus)
	assert.True(t, errors.Is(err, ErrUnsupportedInterface))
}
