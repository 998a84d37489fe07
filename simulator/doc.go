// Package simulator provides an in-memory actuator controller that speaks
// the configuration protocol over a canbus.Bus.
//
// It backs the tests and the "virtual" interface of hellactl:
//
//	ctrl := simulator.New(simulator.WithBroadcast(50 * time.Millisecond))
//	sess := actuator.New(ctrl)
//	defer sess.Close()
//
// The controller only models what the engine observes: acknowledgments,
// memory responses, the effect of writes and telemetry. It does not model
// travel time; a drive command moves the actuator to its extreme at once.
package simulator
