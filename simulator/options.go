package simulator

import (
	"time"

	"github.com/moffa90/go-hella/protocol"
)

// Option configures a Controller.
type Option func(*Controller)

// WithMemory sets the initial configuration store.
func WithMemory(m protocol.MemoryImage) Option {
	return func(c *Controller) {
		c.memory = m
	}
}

// WithoutAck makes the controller ignore wake frames.
func WithoutAck() Option {
	return func(c *Controller) {
		c.ack = false
	}
}

// WithSilenceAfter makes the controller stop answering memory selects after
// n answers. WithSilenceAfter(50) answers addresses 0-49 of a dump.
func WithSilenceAfter(n int) Option {
	return func(c *Controller) {
		c.silenceAfter = n
	}
}

// WithBroadcast enables telemetry broadcasts every interval.
func WithBroadcast(interval time.Duration) Option {
	return func(c *Controller) {
		c.broadcast = interval
	}
}

// WithPosition sets the initial raw position.
func WithPosition(position uint16) Option {
	return func(c *Controller) {
		c.position = position
	}
}

// WithTelemetry sets the status, temperature and load reported in broadcasts.
func WithTelemetry(status, temperature byte, load uint16) Option {
	return func(c *Controller) {
		c.status = status
		c.temperature = temperature
		c.load = load
	}
}

// WithVariant sets the controller model, which decides the raw positions of
// the extremes.
func WithVariant(v protocol.Variant) Option {
	return func(c *Controller) {
		c.variant = v
	}
}
