package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/moffa90/go-hella/actuator"
	"github.com/moffa90/go-hella/dump"
	"github.com/moffa90/go-hella/protocol"
)

func (c *cli) dispatch(ctx context.Context, cmd string, args []string) error {
	if cmd == "show" {
		return c.show(args)
	}

	var handler func(context.Context, *actuator.Session, []string) error
	switch cmd {
	case "ping":
		handler = c.ping
	case "dump":
		handler = c.dump
	case "limits":
		handler = c.limits
	case "position":
		handler = c.position
	case "set-min":
		handler = c.setMin
	case "set-max":
		handler = c.setMax
	case "set-minmax":
		handler = c.setMinMax
	case "write-byte":
		handler = c.writeByte
	case "calibrate":
		handler = c.calibrate
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	sess, err := c.openSession()
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	return handler(ctx, sess, args)
}

// parseNumbers parses exactly n decimal or 0x-prefixed arguments.
func parseNumbers(args []string, n int, names ...string) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: expected %d argument(s): %v", errUsage, n, names)
	}
	out := make([]int, n)
	for i, a := range args {
		v, err := strconv.ParseInt(a, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid %s %q", errUsage, names[i], a)
		}
		out[i] = int(v)
	}
	return out, nil
}

func (c *cli) ping(ctx context.Context, sess *actuator.Session, _ []string) error {
	if err := sess.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "controller answered")
	return nil
}

func (c *cli) dump(ctx context.Context, sess *actuator.Session, args []string) error {
	var path string
	switch len(args) {
	case 0:
		path = filepath.Join(c.cfg.Dumps.Dir, dump.DefaultFilename(time.Now()))
	case 1:
		path = args[0]
	default:
		return fmt.Errorf("%w: dump takes at most one file name", errUsage)
	}

	f, err := dump.Create(path)
	if err != nil {
		return err
	}
	if _, err := sess.ReadMemory(ctx, f); err != nil {
		f.Abort()
		return err
	}
	if err := f.Commit(); err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "memory dump saved to %s\n", f.Path())
	return nil
}

func (c *cli) show(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: show needs a dump file", errUsage)
	}
	img, err := dump.Parse(args[0])
	if err != nil {
		return err
	}
	return dump.WriteHex(c.stdout, img, protocol.VariantG222)
}

func (c *cli) limits(ctx context.Context, sess *actuator.Session, _ []string) error {
	l, err := sess.ReadMinMax(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "min   0x%04X\nmax   0x%04X\nrange 0x%02X\n", l.Min, l.Max, l.Range)
	return nil
}

func (c *cli) position(ctx context.Context, sess *actuator.Session, _ []string) error {
	sample, ok, err := sess.ReadCurrentPosition(ctx, c.cfg.Protocol.Timeout)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no telemetry within %s", c.cfg.Protocol.Timeout)
	}
	fmt.Fprintln(c.stdout, sample)
	return nil
}

func (c *cli) setMin(ctx context.Context, sess *actuator.Session, args []string) error {
	n, err := parseNumbers(args, 1, "position")
	if err != nil {
		return err
	}
	if err := sess.SetMin(ctx, n[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "min set to 0x%04X\n", n[0])
	return nil
}

func (c *cli) setMax(ctx context.Context, sess *actuator.Session, args []string) error {
	n, err := parseNumbers(args, 1, "position")
	if err != nil {
		return err
	}
	if err := sess.SetMax(ctx, n[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "max set to 0x%04X\n", n[0])
	return nil
}

func (c *cli) setMinMax(ctx context.Context, sess *actuator.Session, args []string) error {
	n, err := parseNumbers(args, 2, "min", "max")
	if err != nil {
		return err
	}
	if err := sess.SetMinMax(ctx, n[0], n[1]); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "limits set to 0x%04X-0x%04X\n", n[0], n[1])
	return nil
}

func (c *cli) writeByte(ctx context.Context, sess *actuator.Session, args []string) error {
	n, err := parseNumbers(args, 2, "address", "value")
	if err != nil {
		return err
	}

	var opts []actuator.WriteOption
	if c.unsafe {
		opts = append(opts, actuator.AllowUnsafe())
	}
	if err := sess.WriteByte(ctx, n[0], n[1], opts...); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "wrote 0x%02X to 0x%02X\n", n[1], n[0])
	return nil
}

func (c *cli) calibrate(ctx context.Context, sess *actuator.Session, _ []string) error {
	cal, err := sess.Calibrate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "extremes 0x%04X-0x%04X\n", cal.Min, cal.Max)

	if !c.apply {
		return nil
	}
	if err := sess.SetMinMax(ctx, int(cal.Min), int(cal.Max)); err != nil {
		return fmt.Errorf("apply calibration: %w", err)
	}
	fmt.Fprintln(c.stdout, "limits applied")
	return nil
}
