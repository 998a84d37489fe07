// Package canbus provides the minimal CAN transport the actuator engine
// consumes: send a frame, receive a frame within a timeout, close.
//
// Two hardware transports are available:
//
//   - SocketCAN (Linux): a raw AF_CAN socket bound to a network interface
//     such as "can0". The bit rate is configured on the interface itself
//     (ip link set can0 type can bitrate 500000).
//   - SLCAN: a USB-serial adapter speaking the Lawicel ASCII protocol, opened
//     through go.bug.st/serial.
//
// Example:
//
//	bus, err := canbus.Open(canbus.Config{
//	    Interface: canbus.InterfaceSLCAN,
//	    Channel:   "/dev/ttyACM0",
//	    Bitrate:   500000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bus.Close()
//
// Only standard 11-bit data frames with an 8-byte payload are carried.
package canbus
