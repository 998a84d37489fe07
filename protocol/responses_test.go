package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moffa90/go-hella/canbus"
)

func TestIsAck(t *testing.T) {
	tests := []struct {
		name  string
		frame canbus.Frame
		want  bool
	}{
		{"valid", canbus.NewFrame(AckResponseID, 0, 0, 0, 0, 0, 0, 0, AckSignature), true},
		{"ignores other bytes", canbus.NewFrame(AckResponseID, 0xFF, 0xFF, 0, 0, 0, 0, 0, AckSignature), true},
		{"wrong signature", canbus.NewFrame(AckResponseID, 0, 0, 0, 0, 0, 0, 0, 0x52), false},
		{"wrong id", canbus.NewFrame(MemoryResponseID, 0, 0, 0, 0, 0, 0, 0, AckSignature), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAck(tt.frame))
		})
	}
}

func TestParseMemoryResponse(t *testing.T) {
	v, ok := ParseMemoryResponse(canbus.NewFrame(MemoryResponseID, 0x42, 0x99))
	assert.True(t, ok)
	assert.Equal(t, byte(0x42), v)

	_, ok = ParseMemoryResponse(canbus.NewFrame(PositionBroadcastID, 0x42))
	assert.False(t, ok)
}

func TestIsTelemetry(t *testing.T) {
	assert.True(t, IsTelemetry(canbus.NewFrame(PositionBroadcastID)))
	assert.False(t, IsTelemetry(canbus.NewFrame(AckResponseID)))
}
