package canbus

import (
	"fmt"
	"strings"
)

// Interface types accepted by Open.
const (
	InterfaceSocketCAN = "socketcan"
	InterfaceSLCAN     = "slcan"
	InterfaceVirtual   = "virtual"
)

// Defaults used when a Config leaves a field unset.
const (
	DefaultBitrate     = 500000
	DefaultTTYBaudrate = 128000
	DefaultChannel     = "can0"
)

// Config describes how to reach the bus. The channel and bit rate are
// supplied by the caller at construction time.
type Config struct {
	// Interface is one of InterfaceSocketCAN, InterfaceSLCAN or InterfaceVirtual.
	Interface string `mapstructure:"interface"`

	// Channel is the network interface name ("can0") for SocketCAN or the
	// serial device path ("/dev/ttyACM0") for SLCAN.
	Channel string `mapstructure:"channel"`

	// Bitrate is the CAN bus bit rate in bits per second.
	Bitrate int `mapstructure:"bitrate"`

	// TTYBaudrate is the serial line speed used to talk to an SLCAN adapter.
	TTYBaudrate int `mapstructure:"ttyBaudrate"`
}

// Normalize validates the configuration and applies defaults for unset values.
func (c Config) Normalize() (Config, error) {
	cfg := c
	cfg.Interface = strings.ToLower(strings.TrimSpace(cfg.Interface))
	if cfg.Interface == "" {
		cfg.Interface = InterfaceSocketCAN
	}
	if cfg.Bitrate <= 0 {
		cfg.Bitrate = DefaultBitrate
	}
	if cfg.TTYBaudrate <= 0 {
		cfg.TTYBaudrate = DefaultTTYBaudrate
	}

	switch cfg.Interface {
	case InterfaceSocketCAN:
		if cfg.Channel == "" {
			cfg.Channel = DefaultChannel
		}
	case InterfaceSLCAN:
		if cfg.Channel == "" {
			return cfg, fmt.Errorf("slcan requires a serial device path as channel")
		}
		if _, ok := slcanBitrates[cfg.Bitrate]; !ok {
			return cfg, fmt.Errorf("unsupported slcan bitrate %d", cfg.Bitrate)
		}
	case InterfaceVirtual:
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnsupportedInterface, c.Interface)
	}
	return cfg, nil
}

// Open opens a hardware bus described by cfg. The virtual interface has no
// hardware behind it and must be constructed by the caller (see package
// simulator); Open rejects it.
func Open(cfg Config) (Bus, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	switch cfg.Interface {
	case InterfaceSocketCAN:
		return OpenSocketCAN(cfg.Channel)
	case InterfaceSLCAN:
		return OpenSLCAN(cfg.Channel, cfg.Bitrate, cfg.TTYBaudrate)
	default:
		return nil, fmt.Errorf("%w: %q has no hardware transport", ErrUnsupportedInterface, cfg.Interface)
	}
}
