// Package logging builds the zap logger used by hellactl and adapts it to
// the actuator.Logger interface.
package logging
