package actuator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-hella/canbus"
	"github.com/moffa90/go-hella/protocol"
	"github.com/moffa90/go-hella/simulator"
)

// MockLogger records log calls for assertions.
type MockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	kv    []interface{}
}

func (l *MockLogger) add(level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level, msg, kv})
}

func (l *MockLogger) Debug(msg string, kv ...interface{}) { l.add("debug", msg, kv) }
func (l *MockLogger) Info(msg string, kv ...interface{})  { l.add("info", msg, kv) }
func (l *MockLogger) Warn(msg string, kv ...interface{})  { l.add("warn", msg, kv) }
func (l *MockLogger) Error(msg string, kv ...interface{}) { l.add("error", msg, kv) }

func (l *MockLogger) byLevel(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

// fastOptions shrinks every wait so tests run in milliseconds.
func fastOptions() []Option {
	return []Option{
		WithTimeout(50 * time.Millisecond),
		WithByteTimeout(20 * time.Millisecond),
		WithPollInterval(2 * time.Millisecond),
		WithMessageDelay(0),
		WithDrainTimeout(10 * time.Millisecond),
		WithSettleTime(0),
		WithTelemetryWindow(30 * time.Millisecond),
	}
}

func newTestSession(t *testing.T, ctrl *simulator.Controller, opts ...Option) *Session {
	t.Helper()
	s := New(ctrl, append(fastOptions(), opts...)...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewPanicsOnNilBus(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

func TestNewDefaults(t *testing.T) {
	s := New(simulator.New())
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, protocol.VariantG222, s.Variant())
	assert.Equal(t, protocol.DefaultMessageDelay, s.config.MessageDelay)
	assert.Equal(t, protocol.DefaultTimeout, s.config.Timeout)

	s = New(simulator.New(), WithSessionID("bench-1"))
	assert.Equal(t, "bench-1", s.ID())
}

func TestOpenRejectsUnknownInterface(t *testing.T) {
	_, err := Open(canbus.Config{Interface: "pcan"})
	assert.ErrorIs(t, err, canbus.ErrUnsupportedInterface)
}

func TestCloseIdempotent(t *testing.T) {
	ctrl := simulator.New()
	logger := &MockLogger{}
	s := New(ctrl, WithLogger(logger))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, ctrl.CloseCount())

	err := s.Ping(context.Background())
	assert.ErrorIs(t, err, protocol.ErrTransportFailure)
	assert.ErrorIs(t, err, canbus.ErrClosed)
}

func TestLogLinesCarrySessionID(t *testing.T) {
	logger := &MockLogger{}
	s := newTestSession(t, simulator.New(), WithLogger(logger), WithSessionID("abc"))

	require.NoError(t, s.Ping(context.Background()))

	infos := logger.byLevel("info")
	require.NotEmpty(t, infos)
	assert.Equal(t, []interface{}{"session_id", "abc"}, infos[0].kv[:2])
}

func TestPing(t *testing.T) {
	ctrl := simulator.New()
	ctrl.Inject(
		canbus.NewFrame(protocol.PositionBroadcastID, 0, 0, 0x02, 0x14),
		canbus.NewFrame(protocol.AckResponseID, 0, 0, 0, 0, 0, 0, 0, 0x00),
	)
	s := newTestSession(t, ctrl)

	require.NoError(t, s.Ping(context.Background()))
	assert.Equal(t, []canbus.Frame{protocol.WakeFrame()}, ctrl.Sent())
}

func TestPingNoAcknowledgment(t *testing.T) {
	s := newTestSession(t, simulator.New(simulator.WithoutAck()))

	start := time.Now()
	err := s.Ping(context.Background())
	assert.ErrorIs(t, err, protocol.ErrNoAcknowledgment)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPingCancelled(t *testing.T) {
	s := newTestSession(t, simulator.New(simulator.WithoutAck()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Ping(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, protocol.ErrNoAcknowledgment))
}

func TestTransportFailure(t *testing.T) {
	ctrl := simulator.New()
	boom := errors.New("no such device")
	ctrl.FailSends(boom)
	s := newTestSession(t, ctrl)

	_, err := s.ReadMemory(context.Background(), nil)
	assert.ErrorIs(t, err, protocol.ErrTransportFailure)
	assert.ErrorIs(t, err, boom)
}

func TestConcurrentOperationsAreSerialized(t *testing.T) {
	s := newTestSession(t, simulator.New())

	var wg sync.WaitGroup
	results := make([]uint16, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.ReadMin(context.Background())
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, uint16(0x0113), results[i])
	}
}
