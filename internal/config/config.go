package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/moffa90/go-hella/canbus"
)

// EnvPrefix prefixes every environment override, e.g. HELLA_BUS_CHANNEL.
const EnvPrefix = "HELLA"

// ProtocolConfig holds the bus timing of the engine.
type ProtocolConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	ByteTimeout  time.Duration `mapstructure:"byteTimeout"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	MessageDelay time.Duration `mapstructure:"messageDelay"`
	DrainTimeout time.Duration `mapstructure:"drainTimeout"`
}

// CalibrationConfig holds the auto-calibration timing.
type CalibrationConfig struct {
	Settle time.Duration `mapstructure:"settle"`
	Window time.Duration `mapstructure:"window"`
}

// LumberjackConfig configures the rotating log file.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig configures level, encoding and optional file output.
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// DumpsConfig configures where memory dumps are written.
type DumpsConfig struct {
	Dir string `mapstructure:"dir"`
}

// Config is the hellactl configuration.
type Config struct {
	Bus         canbus.Config     `mapstructure:"bus"`
	Protocol    ProtocolConfig    `mapstructure:"protocol"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Dumps       DumpsConfig       `mapstructure:"dumps"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"interface":     "bus.interface",
	"channel":       "bus.channel",
	"bitrate":       "bus.bitrate",
	"tty-baudrate":  "bus.ttyBaudrate",
	"timeout":       "protocol.timeout",
	"byte-timeout":  "protocol.byteTimeout",
	"message-delay": "protocol.messageDelay",
	"poll-interval": "protocol.pollInterval",
	"drain-timeout": "protocol.drainTimeout",
	"settle":        "calibration.settle",
	"window":        "calibration.window",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"log-file":      "logging.file.filename",
	"dump-dir":      "dumps.dir",
}

// Load reads configuration from a YAML file, HELLA_* environment variables
// and flags, in increasing order of precedence.
//
// If path is empty, HELLA_CONFIG is consulted, then ./hella.yaml and
// ./configs/hella.yaml. A missing default file is not an error. flags may be
// nil; flags that are not defined in the set are skipped.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("hella")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	bus, err := cfg.Bus.Normalize()
	if err != nil {
		return nil, fmt.Errorf("bus config: %w", err)
	}
	cfg.Bus = bus
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bus.interface", canbus.InterfaceSocketCAN)
	v.SetDefault("bus.channel", canbus.DefaultChannel)
	v.SetDefault("bus.bitrate", canbus.DefaultBitrate)
	v.SetDefault("bus.ttyBaudrate", canbus.DefaultTTYBaudrate)

	v.SetDefault("protocol.timeout", "1s")
	v.SetDefault("protocol.byteTimeout", "1s")
	v.SetDefault("protocol.pollInterval", "100ms")
	v.SetDefault("protocol.messageDelay", "20ms")
	v.SetDefault("protocol.drainTimeout", "1s")

	v.SetDefault("calibration.settle", "2s")
	v.SetDefault("calibration.window", "1s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 10)
	v.SetDefault("logging.file.maxBackups", 5)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("dumps.dir", ".")
}
