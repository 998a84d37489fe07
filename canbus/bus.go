package canbus

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxStandardID is the largest 11-bit (non-extended) CAN identifier.
const MaxStandardID = 0x7FF

// PayloadSize is the fixed payload length of every frame on this bus.
const PayloadSize = 8

var (
	// ErrClosed is returned by Send and Receive after Close.
	ErrClosed = errors.New("canbus: closed")

	// ErrInvalidID indicates an identifier that does not fit in 11 bits.
	ErrInvalidID = errors.New("canbus: invalid identifier")

	// ErrUnsupportedInterface is returned by Open for an unknown interface type.
	ErrUnsupportedInterface = errors.New("canbus: unsupported interface")
)

// Frame is a classical CAN data frame with an 11-bit identifier and an
// 8-byte payload. Frames are plain values.
type Frame struct {
	ID   uint32
	Data [PayloadSize]byte
}

// NewFrame builds a frame from an identifier and up to eight payload bytes.
// Missing trailing bytes are zero; extra bytes are dropped.
func NewFrame(id uint32, data ...byte) Frame {
	f := Frame{ID: id}
	copy(f.Data[:], data)
	return f
}

// Validate returns an error if the identifier is not a standard 11-bit ID.
func (f Frame) Validate() error {
	if f.ID > MaxStandardID {
		return fmt.Errorf("%w: 0x%X", ErrInvalidID, f.ID)
	}
	return nil
}

// String renders the frame in candump style: "3F0#4900000000000000".
func (f Frame) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%03X#", f.ID)
	for _, v := range f.Data {
		fmt.Fprintf(&b, "%02X", v)
	}
	return b.String()
}

// Bus is the minimal transport capability the protocol engine consumes.
//
// Implementations are not required to be safe for concurrent use; the engine
// serializes all access to a Bus.
type Bus interface {
	// Send transmits one frame.
	Send(frame Frame) error

	// Receive waits at most timeout for the next frame. It returns ok=false
	// with a nil error when nothing arrived in time.
	Receive(timeout time.Duration) (frame Frame, ok bool, err error)

	// Close releases the underlying handle. Calling Close more than once
	// returns the result of the first call.
	Close() error
}
