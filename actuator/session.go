package actuator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moffa90/go-hella/canbus"
	"github.com/moffa90/go-hella/protocol"
)

// Session owns a bus connection to one actuator controller.
// Its lifecycle is open, then any number of (handshake; read or write)
// operations, then Close.
//
// Session is safe for concurrent use; operations are serialized because the
// controller can only handle one exchange at a time.
type Session struct {
	bus    canbus.Bus
	config Config

	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// New creates a Session on an already opened bus. The session takes
// ownership of the bus and closes it in Close.
//
// Example:
//
//	bus, _ := canbus.Open(canbus.Config{Interface: "socketcan", Channel: "can0"})
//	sess := actuator.New(bus,
//	    actuator.WithLogger(myLogger),
//	    actuator.WithTimeout(2*time.Second),
//	)
//	defer sess.Close()
func New(bus canbus.Bus, opts ...Option) *Session {
	if bus == nil {
		panic("bus cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = protocol.DefaultPollInterval
	}

	return &Session{
		bus:    bus,
		config: cfg,
	}
}

// Open opens the bus described by busCfg and starts a session on it.
func Open(busCfg canbus.Config, opts ...Option) (*Session, error) {
	bus, err := canbus.Open(busCfg)
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	s := New(bus, opts...)
	s.logInfo("bus opened", "interface", busCfg.Interface, "channel", busCfg.Channel)
	return s, nil
}

// ID returns the session identifier attached to log lines.
func (s *Session) ID() string {
	return s.config.SessionID
}

// Variant returns the controller model the session decodes telemetry with.
func (s *Session) Variant() protocol.Variant {
	return s.config.Variant
}

// Close releases the bus. It is safe to call more than once; later calls
// return the result of the first.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.closeErr = s.bus.Close()
		if s.closeErr != nil {
			s.logError("close bus", "error", s.closeErr)
			return
		}
		s.logInfo("session closed")
	})
	return s.closeErr
}

// send transmits one frame. Bus errors become TransportFailure.
func (s *Session) send(op string, frame canbus.Frame) error {
	if err := s.bus.Send(frame); err != nil {
		return protocol.TransportFailure(op, err)
	}
	return nil
}

// receive waits at most timeout for one frame. Bus errors become
// TransportFailure.
func (s *Session) receive(op string, timeout time.Duration) (canbus.Frame, bool, error) {
	f, ok, err := s.bus.Receive(timeout)
	if err != nil {
		return canbus.Frame{}, false, protocol.TransportFailure(op, err)
	}
	return f, ok, nil
}

// pollSlice returns the next receive timeout before deadline, or 0 when the
// deadline has passed.
func (s *Session) pollSlice(deadline time.Time) time.Duration {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0
	}
	return min(remaining, s.config.PollInterval)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func cancelled(op string, err error) error {
	return fmt.Errorf("%s: cancelled: %w", op, err)
}

// reportProgress calls the progress callback if configured.
func (s *Session) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, s.withSession(keysAndValues)...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, s.withSession(keysAndValues)...)
	}
}

// logWarn logs a warning if a logger is configured.
func (s *Session) logWarn(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Warn(msg, s.withSession(keysAndValues)...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, s.withSession(keysAndValues)...)
	}
}

func (s *Session) withSession(keysAndValues []interface{}) []interface{} {
	return append([]interface{}{"session_id", s.config.SessionID}, keysAndValues...)
}
