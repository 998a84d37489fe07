package protocol

import (
	"encoding/binary"
	"fmt"

	"github.com/moffa90/go-hella/canbus"
)

// OutOfRange is the Percent value of a sample outside the calibrated travel.
const OutOfRange = -1

// Variant holds the calibration facts of one controller model. They were
// measured on hardware and are not derived from the protocol.
type Variant struct {
	Name string

	// ClosedRaw is the raw position reported at 0% open.
	ClosedRaw int

	// OpenRaw is the raw position reported at 100% open.
	OpenRaw int

	// RangeDivisor converts a limit span into the range byte.
	RangeDivisor int

	// DefaultRangeByte is written when the span is not known.
	DefaultRangeByte byte
}

// VariantG222 is the G-222 electronic turbo actuator. Its raw scale is
// inverted: 688 is fully closed, 212 fully open.
var VariantG222 = Variant{
	Name:             "G-222",
	ClosedRaw:        688,
	OpenRaw:          212,
	RangeDivisor:     4,
	DefaultRangeByte: 99,
}

// Percent converts a raw position to percent open, or OutOfRange.
func (v Variant) Percent(position int) int {
	lo, hi := min(v.OpenRaw, v.ClosedRaw), max(v.OpenRaw, v.ClosedRaw)
	if position < lo || position > hi || hi == lo {
		return OutOfRange
	}
	return (v.ClosedRaw - position) * 100 / (v.ClosedRaw - v.OpenRaw)
}

// RangeByte derives the range byte from a pair of limits as
// (max-min)/RangeDivisor. ok is false when the pair is not usable
// (max <= min); DefaultRangeByte is returned in that case.
func (v Variant) RangeByte(minPos, maxPos int) (b byte, ok bool) {
	if maxPos <= minPos || v.RangeDivisor <= 0 {
		return v.DefaultRangeByte, false
	}
	r := (maxPos - minPos) / v.RangeDivisor
	if r > 0xFF {
		r = 0xFF
	}
	return byte(r), true
}

// PositionSample is one decoded telemetry broadcast.
type PositionSample struct {
	Status      byte
	Position    uint16
	Temperature byte
	Load        uint16

	// Percent is percent open in [0,100] or OutOfRange.
	Percent int
}

// InRange reports whether the sample lies inside the calibrated travel.
func (s PositionSample) InRange() bool {
	return s.Percent != OutOfRange
}

func (s PositionSample) String() string {
	pct := "out of range"
	if s.InRange() {
		pct = fmt.Sprintf("%d%%", s.Percent)
	}
	return fmt.Sprintf("pos 0x%04X (%s) status 0x%02X temp %d°C load %d",
		s.Position, pct, s.Status, s.Temperature, s.Load)
}

// DecodePosition decodes a telemetry broadcast. ok is false for frames on any
// other identifier.
//
// Payload layout:
//
//	[STATUS] [--] [POS_H] [POS_L] [--] [TEMP] [LOAD_H] [LOAD_L]
func DecodePosition(frame canbus.Frame, v Variant) (sample PositionSample, ok bool) {
	if !IsTelemetry(frame) {
		return PositionSample{}, false
	}

	d := frame.Data
	sample = PositionSample{
		Status:      d[0],
		Position:    binary.BigEndian.Uint16(d[2:4]),
		Temperature: d[5],
		Load:        binary.BigEndian.Uint16(d[6:8]),
	}
	sample.Percent = v.Percent(int(sample.Position))
	return sample, true
}
