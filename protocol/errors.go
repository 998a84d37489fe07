package protocol

import (
	"errors"
	"fmt"
)

// Kind classifies a ProtocolError.
type Kind int

// Error kinds surfaced by the engine.
const (
	// KindNoAcknowledgment: the handshake acknowledgment never arrived.
	KindNoAcknowledgment Kind = iota + 1

	// KindMissingByte: a memory read got no response for one address.
	KindMissingByte

	// KindInvalidParameter: an address, value or position was rejected
	// before any frame was sent.
	KindInvalidParameter

	// KindCalibrationIncomplete: no telemetry was seen at an extreme.
	KindCalibrationIncomplete

	// KindTransportFailure: the bus itself failed. Err holds the bus error.
	KindTransportFailure
)

// Sentinel errors for use with errors.Is. A *ProtocolError matches the
// sentinel of its Kind.
var (
	ErrNoAcknowledgment      = errors.New("no acknowledgment")
	ErrMissingByte           = errors.New("missing byte")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrCalibrationIncomplete = errors.New("calibration incomplete")
	ErrTransportFailure      = errors.New("transport failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNoAcknowledgment:
		return ErrNoAcknowledgment
	case KindMissingByte:
		return ErrMissingByte
	case KindInvalidParameter:
		return ErrInvalidParameter
	case KindCalibrationIncomplete:
		return ErrCalibrationIncomplete
	case KindTransportFailure:
		return ErrTransportFailure
	default:
		return nil
	}
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ProtocolError is the tagged error returned by every engine operation.
// Contains enough context (address, stage) for the caller to retry or abort.
type ProtocolError struct {
	// Kind classifies the failure
	Kind Kind

	// Op is the operation that failed, e.g. "read memory"
	Op string

	// Address is the memory address involved (MissingByte, InvalidParameter)
	Address int

	// Stage names the calibration extreme (CalibrationIncomplete)
	Stage string

	// Err is the underlying cause, if any
	Err error
}

func (e *ProtocolError) Error() string {
	var msg string
	switch e.Kind {
	case KindMissingByte:
		msg = fmt.Sprintf("%s: no response for address 0x%02X", e.Op, e.Address)
	case KindCalibrationIncomplete:
		msg = fmt.Sprintf("%s: %s: no telemetry at %s extreme", e.Op, e.Kind, e.Stage)
	default:
		msg = fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel error of the same Kind.
func (e *ProtocolError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError returns true if err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// NoAcknowledgment builds a KindNoAcknowledgment error.
func NoAcknowledgment(op string) error {
	return &ProtocolError{Kind: KindNoAcknowledgment, Op: op}
}

// MissingByte builds a KindMissingByte error for address.
func MissingByte(op string, address int) error {
	return &ProtocolError{Kind: KindMissingByte, Op: op, Address: address}
}

// InvalidParameter builds a KindInvalidParameter error with a formatted detail.
func InvalidParameter(op, format string, args ...any) error {
	return &ProtocolError{Kind: KindInvalidParameter, Op: op, Err: fmt.Errorf(format, args...)}
}

// CalibrationIncomplete builds a KindCalibrationIncomplete error for stage.
func CalibrationIncomplete(op, stage string) error {
	return &ProtocolError{Kind: KindCalibrationIncomplete, Op: op, Stage: stage}
}

// TransportFailure wraps a bus error. Errors that already are protocol
// errors are returned unchanged.
func TransportFailure(op string, err error) error {
	if err == nil || IsProtocolError(err) {
		return err
	}
	return &ProtocolError{Kind: KindTransportFailure, Op: op, Err: err}
}
