package actuator

import "time"

// Operation phases reported through Progress.Phase.
const (
	// PhaseHandshake: waking the controller
	PhaseHandshake = "handshake"

	// PhaseReading: reading memory bytes
	PhaseReading = "reading"

	// PhaseWriting: sending a write macro
	PhaseWriting = "writing"

	// PhaseSeeking: calibration is driving towards an extreme
	PhaseSeeking = "seeking"

	// PhaseSettled: calibration recorded an extreme
	PhaseSettled = "settled"

	// PhaseComplete: the operation finished successfully
	PhaseComplete = "complete"
)

// Progress contains information about a running operation.
// Passed to ProgressCallback while reading, writing or calibrating.
type Progress struct {
	// Phase is one of the Phase* constants
	Phase string

	// Operation is the operation reporting progress, e.g. "read memory"
	Operation string

	// Stage names the calibration extreme (PhaseSeeking, PhaseSettled)
	Stage string

	// Step is the number of completed steps
	Step int

	// TotalSteps is the number of steps in the operation
	TotalSteps int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// Position is the raw position recorded at PhaseSettled
	Position uint16

	// ElapsedTime is the time elapsed since the operation started
	ElapsedTime time.Duration
}

// ProgressCallback is called during long operations to report progress.
// Implementations should return quickly; the bus is held while it runs.
//
// Example:
//
//	sess := actuator.New(bus,
//	    actuator.WithProgressCallback(func(p actuator.Progress) {
//	        fmt.Printf("[%s] %.0f%%\n", p.Phase, p.Percentage)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to a Session.
// This allows integration with any logging framework; see
// internal/logging.ForActuator for a zap adapter.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Warn(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Warn logs a warning with optional key-value pairs
	Warn(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
