package protocol

import (
	"fmt"

	"github.com/moffa90/go-hella/canbus"
)

// Slot names a payload byte of a Template that is bound at render time.
type Slot int

// Template parameter slots.
const (
	SlotNone Slot = iota
	SlotAddress
	SlotValue
	SlotMinHigh
	SlotMinLow
	SlotMaxHigh
	SlotMaxLow
	SlotRange
)

var slotNames = map[Slot]string{
	SlotAddress: "address",
	SlotValue:   "value",
	SlotMinHigh: "min high byte",
	SlotMinLow:  "min low byte",
	SlotMaxHigh: "max high byte",
	SlotMaxLow:  "max low byte",
	SlotRange:   "range byte",
}

func (s Slot) String() string {
	if n, ok := slotNames[s]; ok {
		return n
	}
	return fmt.Sprintf("slot(%d)", int(s))
}

// Params binds template slots to byte values.
type Params map[Slot]byte

// LimitParams binds the slots of the limit templates.
func LimitParams(minPos, maxPos uint16, rangeByte byte) Params {
	return Params{
		SlotMinHigh: byte(minPos >> 8),
		SlotMinLow:  byte(minPos),
		SlotMaxHigh: byte(maxPos >> 8),
		SlotMaxLow:  byte(maxPos),
		SlotRange:   rangeByte,
	}
}

// Step is one primitive command of a template. A Step with a Slot takes its
// memory address (select) or value (write) from the bound Params.
type Step struct {
	Op       byte
	Register uint16
	Value    byte
	Slot     Slot
}

func sel(register uint16) Step { return Step{Op: OpSelect, Register: register} }
func selMem(address byte) Step { return sel(MemoryPage<<8 | uint16(address)) }
func selSlot(slot Slot) Step   { return Step{Op: OpSelect, Register: MemoryPage << 8, Slot: slot} }
func write(value byte) Step    { return Step{Op: OpWrite, Value: value} }
func writeSlot(slot Slot) Step { return Step{Op: OpWrite, Slot: slot} }
func end() Step                { return Step{Op: OpEnd} }

func steps(parts ...[]Step) []Step {
	var out []Step
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Template is a named, ordered command sequence with parameter slots.
type Template struct {
	Name  string
	Steps []Step
}

// Macro is a rendered template: frames ready to send in order.
type Macro struct {
	Name   string
	Frames []canbus.Frame
}

// Render binds params into the template. Every slot the template uses must
// be bound.
func (t Template) Render(params Params) (Macro, error) {
	m := Macro{Name: t.Name, Frames: make([]canbus.Frame, 0, len(t.Steps))}

	for i, st := range t.Steps {
		var b byte
		if st.Slot != SlotNone {
			v, ok := params[st.Slot]
			if !ok {
				return Macro{}, InvalidParameter(t.Name, "step %d: %s not bound", i, st.Slot)
			}
			b = v
		}

		switch st.Op {
		case OpSelect:
			reg := st.Register
			if st.Slot != SlotNone {
				reg |= uint16(b)
			}
			m.Frames = append(m.Frames, SelectCmd(reg))
		case OpWrite:
			v := st.Value
			if st.Slot != SlotNone {
				v = b
			}
			m.Frames = append(m.Frames, WriteCmd(v))
		case OpEnd:
			m.Frames = append(m.Frames, EndCmd())
		default:
			return Macro{}, fmt.Errorf("%s: step %d: unknown opcode 0x%02X", t.Name, i, st.Op)
		}
	}
	return m, nil
}

// MustRender is Render for templates without slots. It panics on error.
func (t Template) MustRender() Macro {
	m, err := t.Render(nil)
	if err != nil {
		panic(err)
	}
	return m
}

// Shared fragments of the write sequences.
var (
	// programPrologue switches the controller into program mode and unlocks
	// the store.
	programPrologue = []Step{
		sel(RegSequence), sel(RegMode), write(ModeProgram),
		sel(RegSequence), sel(RegSequence), write(KeyUnlock),
	}

	// runEpilogue returns the controller to run mode and ends the sequence.
	runEpilogue = []Step{
		sel(RegMode), write(ModeRun), sel(RegSequence), end(),
	}
)

func toggle(key byte) []Step {
	return []Step{sel(RegSequence), write(0x00), sel(RegSequence), write(key)}
}

func writePair(hi, lo byte, hiSlot, loSlot Slot) []Step {
	return []Step{selMem(hi), writeSlot(hiSlot), selMem(lo), writeSlot(loSlot)}
}

func selectPair(hi, lo byte) []Step {
	return []Step{selMem(hi), selMem(lo)}
}

// limitTemplate is the shared shape of the limit writes: the first pair is
// written under the unlock key, the second pair under the commit key,
// followed by the range byte.
func limitTemplate(name string, first, second []Step) Template {
	return Template{
		Name: name,
		Steps: steps(
			programPrologue,
			first,
			toggle(KeyUnlock),
			second,
			toggle(KeyCommit),
			[]Step{selMem(AddrRange), writeSlot(SlotRange)},
			toggle(KeyCommit),
			[]Step{selMem(AddrRangeAux), sel(RegSequence), write(0x00), sel(RegSequence)},
			runEpilogue,
		),
	}
}

// Built-in templates.
var (
	// WriteByteTemplate writes SlotValue to memory address SlotAddress.
	WriteByteTemplate = Template{
		Name: "write byte",
		Steps: steps(
			programPrologue,
			[]Step{selSlot(SlotAddress), writeSlot(SlotValue)},
			toggle(KeyCommit),
			runEpilogue,
		),
	}

	// SetMinTemplate writes the minimum limit and the range byte.
	SetMinTemplate = limitTemplate("set min",
		writePair(AddrMinHigh, AddrMinLow, SlotMinHigh, SlotMinLow),
		selectPair(AddrMaxHigh, AddrMaxLow))

	// SetMaxTemplate writes the maximum limit and the range byte.
	SetMaxTemplate = limitTemplate("set max",
		writePair(AddrMaxHigh, AddrMaxLow, SlotMaxHigh, SlotMaxLow),
		selectPair(AddrMaxHigh, AddrMaxLow))

	// SetMinMaxTemplate writes both limits and the range byte.
	SetMinMaxTemplate = limitTemplate("set min max",
		writePair(AddrMinHigh, AddrMinLow, SlotMinHigh, SlotMinLow),
		writePair(AddrMaxHigh, AddrMaxLow, SlotMaxHigh, SlotMaxLow))

	// CalibrateDriveTemplate enters program mode and drives the actuator
	// towards its first extreme.
	CalibrateDriveTemplate = Template{
		Name: "calibrate drive",
		Steps: []Step{
			sel(RegSequence), sel(RegMode), write(ModeProgram),
			sel(RegSequence), sel(RegSequence), sel(RegCalibB), write(0x28),
			sel(RegSequence), sel(RegSequence), sel(RegDrive), write(0x01),
			sel(RegSequence), sel(RegSequence), sel(RegCalibA), write(0x01),
			sel(RegSequence), end(),
		},
	}

	// CalibrateReleaseTemplate drives the actuator towards the opposite
	// extreme.
	CalibrateReleaseTemplate = Template{
		Name: "calibrate release",
		Steps: []Step{
			sel(RegCalibA), write(0x00),
			sel(RegSequence), sel(RegSequence), sel(RegDrive), write(0x00),
			sel(RegSequence), sel(RegSequence), sel(RegCalibA), write(0x01),
			sel(RegSequence), end(),
		},
	}

	// CalibrateRestoreTemplate leaves calibration and returns to run mode.
	CalibrateRestoreTemplate = Template{
		Name: "calibrate restore",
		Steps: []Step{
			sel(RegSequence), sel(RegCalibA), write(0x00),
			sel(RegSequence), sel(RegSequence), sel(RegMode), write(ModeRun),
			sel(RegSequence), end(),
		},
	}
)
