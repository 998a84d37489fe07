package actuator

import (
	"time"

	"github.com/moffa90/go-hella/protocol"
)

// Config holds the session configuration.
type Config struct {
	// ProgressCallback is called during long operations (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Timeout bounds the handshake and passive telemetry reads
	Timeout time.Duration

	// ByteTimeout bounds the wait for each memory response
	ByteTimeout time.Duration

	// PollInterval is the receive slice used while waiting
	PollInterval time.Duration

	// MessageDelay is the pause after each macro frame
	MessageDelay time.Duration

	// DrainTimeout caps how long trailing responses are discarded after a
	// macro. Periodic broadcasts would otherwise keep the drain going forever.
	DrainTimeout time.Duration

	// SettleTime is the pause after a calibration burst before sampling
	SettleTime time.Duration

	// TelemetryWindow is how long telemetry is collected at each extreme
	TelemetryWindow time.Duration

	// Variant holds the controller-specific calibration constants
	Variant protocol.Variant

	// SessionID tags every log line; a random UUID when empty
	SessionID string
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Timeout:         protocol.DefaultTimeout,
		ByteTimeout:     protocol.DefaultTimeout,
		PollInterval:    protocol.DefaultPollInterval,
		MessageDelay:    protocol.DefaultMessageDelay,
		DrainTimeout:    protocol.DefaultTimeout,
		SettleTime:      2 * time.Second,
		TelemetryWindow: time.Second,
		Variant:         protocol.VariantG222,
	}
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithProgressCallback sets a callback function to track operation progress.
//
// Example:
//
//	sess := actuator.New(bus,
//	    actuator.WithProgressCallback(func(p actuator.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for session operations.
//
// Example:
//
//	sess := actuator.New(bus, actuator.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTimeout sets the handshake and telemetry timeout.
//
// Example:
//
//	sess := actuator.New(bus, actuator.WithTimeout(2*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithByteTimeout sets the per-address timeout of memory reads.
func WithByteTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ByteTimeout = timeout
	}
}

// WithPollInterval sets the receive slice used while waiting for frames.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.PollInterval = interval
	}
}

// WithMessageDelay sets the pause between macro frames.
// The controller needs settling time between steps; the default of 20ms is
// known to work and shorter delays can corrupt a write.
func WithMessageDelay(delay time.Duration) Option {
	return func(c *Config) {
		c.MessageDelay = delay
	}
}

// WithDrainTimeout caps the discard of trailing responses after a macro.
func WithDrainTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.DrainTimeout = timeout
	}
}

// WithSettleTime sets the pause after each calibration burst.
func WithSettleTime(d time.Duration) Option {
	return func(c *Config) {
		c.SettleTime = d
	}
}

// WithTelemetryWindow sets how long telemetry is collected at each extreme.
func WithTelemetryWindow(d time.Duration) Option {
	return func(c *Config) {
		c.TelemetryWindow = d
	}
}

// WithVariant selects the controller model.
//
// Example:
//
//	sess := actuator.New(bus, actuator.WithVariant(protocol.VariantG222))
func WithVariant(v protocol.Variant) Option {
	return func(c *Config) {
		c.Variant = v
	}
}

// WithSessionID sets the identifier attached to log lines.
func WithSessionID(id string) Option {
	return func(c *Config) {
		c.SessionID = id
	}
}
