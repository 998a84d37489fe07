//go:build !linux

package canbus

import "fmt"

// OpenSocketCAN is only available on Linux.
func OpenSocketCAN(ifname string) (Bus, error) {
	return nil, fmt.Errorf("%w: socketcan (%s) requires linux", ErrUnsupportedInterface, ifname)
}
