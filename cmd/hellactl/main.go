// Command hellactl reads and writes the configuration of a Hella electronic
// actuator over CAN.
//
// Usage:
//
//	hellactl [flags] <command> [args]
//
// Commands:
//
//	ping                      check that the controller answers
//	dump [file]               read the 128-byte memory into a .bin file
//	show <file>               print a dump as a hex table
//	limits                    read min, max and range byte
//	position                  print the next telemetry broadcast
//	set-min <pos>             write the minimum position
//	set-max <pos>             write the maximum position
//	set-minmax <min> <max>    write both positions
//	write-byte <addr> <val>   write one memory byte (--unsafe for protected addresses)
//	calibrate                 find both extremes (--apply writes them)
//
// Numbers accept decimal or 0x-prefixed hex. The "virtual" interface runs
// against a built-in simulated controller.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/moffa90/go-hella/actuator"
	"github.com/moffa90/go-hella/canbus"
	cfgpkg "github.com/moffa90/go-hella/internal/config"
	"github.com/moffa90/go-hella/internal/logging"
	"github.com/moffa90/go-hella/simulator"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// virtualBroadcast is the telemetry interval of the virtual controller.
const virtualBroadcast = 50 * time.Millisecond

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cli struct {
	cfg    *cfgpkg.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer

	unsafe bool
	apply  bool
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("hellactl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(true)

	fs.String("config", "", "config file (default ./hella.yaml or $HELLA_CONFIG)")
	fs.StringP("interface", "i", "", "bus interface: socketcan, slcan or virtual")
	fs.StringP("channel", "c", "", "CAN interface name or serial device")
	fs.Int("bitrate", 0, "CAN bit rate")
	fs.Int("tty-baudrate", 0, "serial speed of an slcan adapter")
	fs.Duration("timeout", 0, "handshake and telemetry timeout")
	fs.Duration("byte-timeout", 0, "per-address memory read timeout")
	fs.Duration("message-delay", 0, "pause between macro frames")
	fs.Duration("poll-interval", 0, "receive poll slice")
	fs.Duration("drain-timeout", 0, "cap on discarding trailing responses")
	fs.Duration("settle", 0, "calibration settle time")
	fs.Duration("window", 0, "calibration telemetry window")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-format", "", "console or json")
	fs.String("log-file", "", "also log to this rotating file")
	fs.String("dump-dir", "", "directory for memory dumps")
	fs.Bool("unsafe", false, "allow write-byte to protected addresses")
	fs.Bool("apply", false, "calibrate: write the found limits")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: hellactl [flags] <command> [args]")
		fmt.Fprintln(stderr, "commands: ping, dump, show, limits, position, set-min, set-max, set-minmax, write-byte, calibrate")
		fs.PrintDefaults()
	}
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	configPath, _ := fs.GetString("config")
	cfg, err := cfgpkg.Load(configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	c := &cli{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}
	c.unsafe, _ = fs.GetBool("unsafe")
	c.apply, _ = fs.GetBool("apply")

	err = c.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "error: %v\n", err)
		fs.Usage()
		return exitUsage
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
}

// openSession opens the configured bus. The virtual interface gets a fresh
// simulated controller.
func (c *cli) openSession() (*actuator.Session, error) {
	var bus canbus.Bus
	if c.cfg.Bus.Interface == canbus.InterfaceVirtual {
		bus = simulator.New(simulator.WithBroadcast(virtualBroadcast))
	} else {
		b, err := canbus.Open(c.cfg.Bus)
		if err != nil {
			return nil, fmt.Errorf("open %s %s: %w", c.cfg.Bus.Interface, c.cfg.Bus.Channel, err)
		}
		bus = b
	}

	sess := actuator.New(bus, c.sessionOptions()...)
	c.logger.Debug("session opened",
		zap.String("session_id", sess.ID()),
		zap.String("interface", c.cfg.Bus.Interface),
		zap.String("channel", c.cfg.Bus.Channel))
	return sess, nil
}

func (c *cli) sessionOptions() []actuator.Option {
	p := c.cfg.Protocol
	return []actuator.Option{
		actuator.WithLogger(logging.ForActuator(c.logger)),
		actuator.WithTimeout(p.Timeout),
		actuator.WithByteTimeout(p.ByteTimeout),
		actuator.WithPollInterval(p.PollInterval),
		actuator.WithMessageDelay(p.MessageDelay),
		actuator.WithDrainTimeout(p.DrainTimeout),
		actuator.WithSettleTime(c.cfg.Calibration.Settle),
		actuator.WithTelemetryWindow(c.cfg.Calibration.Window),
	}
}
