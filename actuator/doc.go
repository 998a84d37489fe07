// Package actuator drives a Hella electronic actuator controller over a CAN
// bus: memory dumps, limit writes, live position and auto-calibration.
//
// # Overview
//
// A Session owns one bus connection. Every read or write operation starts
// with its own handshake and then runs to completion or fails as a whole:
//   - ReadMemory reads the 128-byte configuration store
//   - ReadMin, ReadMax and ReadMinMax read the stored limits
//   - WriteByte, SetMin, SetMax and SetMinMax write memory through macros
//   - ReadCurrentPosition decodes the next telemetry broadcast
//   - Calibrate finds both mechanical extremes
//
// # Basic Usage
//
//	bus, err := canbus.Open(canbus.Config{Interface: "socketcan", Channel: "can0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sess := actuator.New(bus)
//	defer sess.Close()
//
//	limits, err := sess.ReadMinMax(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("min 0x%04X max 0x%04X\n", limits.Min, limits.Max)
//
// # Configuration Options
//
//	sess := actuator.New(bus,
//	    actuator.WithProgressCallback(progressFunc),
//	    actuator.WithLogger(myLogger),
//	    actuator.WithTimeout(2*time.Second),
//	    actuator.WithMessageDelay(20*time.Millisecond),
//	    actuator.WithVariant(protocol.VariantG222),
//	)
//
// # Error Handling
//
// Failures are *protocol.ProtocolError values; match them with errors.Is:
//
//	_, err := sess.ReadMemory(ctx, nil)
//	switch {
//	case errors.Is(err, protocol.ErrNoAcknowledgment):
//	    // controller asleep or wrong bus
//	case errors.Is(err, protocol.ErrMissingByte):
//	    // retry the whole read
//	case errors.Is(err, protocol.ErrTransportFailure):
//	    // adapter unplugged
//	}
//
// Nothing is retried automatically. Calling an operation again starts over
// with a fresh handshake.
//
// # Thread Safety
//
// A Session serializes all bus access. Operations called from several
// goroutines run one after another.
package actuator
