package simulator

import (
	"sync"
	"time"

	"github.com/moffa90/go-hella/canbus"
	"github.com/moffa90/go-hella/protocol"
)

// receiveSlice bounds one sleep inside Receive so injected frames are seen
// promptly.
const receiveSlice = 5 * time.Millisecond

// Controller is a scripted actuator controller. It implements canbus.Bus and
// answers the commands it is sent.
//
// Behavior:
//   - A wake frame is acknowledged on AckResponseID unless WithoutAck is set.
//   - Selecting a memory address queues its value on MemoryResponseID, until
//     the WithSilenceAfter budget is used up.
//   - Writes to memory only take effect in program mode (RegMode = 0x05).
//   - Writing RegDrive in program mode moves the actuator to an extreme:
//     1 to the open end, 0 to the closed end.
//   - With WithBroadcast, telemetry is emitted on PositionBroadcastID.
type Controller struct {
	mu sync.Mutex

	memory   protocol.MemoryImage
	variant  protocol.Variant
	selected uint16
	mode     byte

	position    uint16
	status      byte
	temperature byte
	load        uint16

	ack          bool
	silenceAfter int
	answered     int

	broadcast     time.Duration
	lastBroadcast time.Time

	queue   []canbus.Frame
	sent    []canbus.Frame
	sendErr error

	closed     bool
	closeCount int
}

// New creates a controller holding DefaultMemory, parked at the closed end.
func New(opts ...Option) *Controller {
	c := &Controller{
		memory:       DefaultMemory(),
		variant:      protocol.VariantG222,
		mode:         protocol.ModeRun,
		ack:          true,
		silenceAfter: -1,
		temperature:  25,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.position == 0 {
		c.position = uint16(c.variant.ClosedRaw)
	}
	return c
}

// DefaultMemory returns a plausible configuration image: identifiers in
// their slots, limits 0x0113-0x0220 and the matching range byte.
func DefaultMemory() protocol.MemoryImage {
	var m protocol.MemoryImage
	for i := range m {
		m[i] = byte(i*7 + 1)
	}
	m[protocol.AddrMinHigh], m[protocol.AddrMinLow] = 0x01, 0x13
	m[protocol.AddrMaxHigh], m[protocol.AddrMaxLow] = 0x02, 0x20
	m[protocol.AddrRange] = 0x43
	m[0x09], m[0x0A] = 0x03, 0xF0
	m[0x24], m[0x25] = 0x03, 0xE8
	m[0x27], m[0x28] = 0x06, 0x58
	return m
}

// Send implements canbus.Bus.
func (c *Controller) Send(frame canbus.Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return canbus.ErrClosed
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, frame)

	if frame.ID != protocol.RequestID {
		return nil
	}

	d := frame.Data
	switch d[0] {
	case protocol.OpWake:
		if c.ack {
			c.queue = append(c.queue, canbus.NewFrame(protocol.AckResponseID, 0, 0, 0, 0, 0, 0, 0, protocol.AckSignature))
		}
	case protocol.OpSelect:
		c.selected = uint16(d[1])<<8 | uint16(d[2])
		if addr, ok := c.memoryAddress(); ok && c.answering() {
			c.answered++
			c.queue = append(c.queue, canbus.NewFrame(protocol.MemoryResponseID, c.memory[addr]))
		}
	case protocol.OpWrite:
		c.write(d[3])
	}
	return nil
}

func (c *Controller) memoryAddress() (int, bool) {
	if c.selected>>8 != protocol.MemoryPage {
		return 0, false
	}
	addr := int(c.selected & 0xFF)
	return addr, addr <= protocol.MaxAddress
}

func (c *Controller) answering() bool {
	return c.silenceAfter < 0 || c.answered < c.silenceAfter
}

func (c *Controller) write(v byte) {
	switch c.selected {
	case protocol.RegMode:
		c.mode = v
		return
	case protocol.RegDrive:
		if c.mode != protocol.ModeProgram {
			return
		}
		if v == 1 {
			c.position = uint16(c.variant.OpenRaw)
		} else {
			c.position = uint16(c.variant.ClosedRaw)
		}
		return
	}

	if addr, ok := c.memoryAddress(); ok && c.mode == protocol.ModeProgram {
		c.memory[addr] = v
	}
}

// Receive implements canbus.Bus.
func (c *Controller) Receive(timeout time.Duration) (canbus.Frame, bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return canbus.Frame{}, false, canbus.ErrClosed
		}
		if len(c.queue) > 0 {
			f := c.queue[0]
			c.queue = c.queue[1:]
			c.mu.Unlock()
			return f, true, nil
		}
		now := time.Now()
		if c.broadcast > 0 && now.Sub(c.lastBroadcast) >= c.broadcast {
			c.lastBroadcast = now
			f := c.telemetryLocked()
			c.mu.Unlock()
			return f, true, nil
		}
		c.mu.Unlock()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return canbus.Frame{}, false, nil
		}
		time.Sleep(min(remaining, receiveSlice))
	}
}

func (c *Controller) telemetryLocked() canbus.Frame {
	return canbus.NewFrame(protocol.PositionBroadcastID,
		c.status, 0x00,
		byte(c.position>>8), byte(c.position),
		0x00, c.temperature,
		byte(c.load>>8), byte(c.load))
}

// Close implements canbus.Bus. Close is idempotent.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.closeCount++
	return nil
}

// Inject queues frames as if another node had sent them.
func (c *Controller) Inject(frames ...canbus.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, frames...)
}

// FailSends makes every later Send return err. A nil err restores normal
// operation.
func (c *Controller) FailSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// Sent returns a copy of every frame the controller has received.
func (c *Controller) Sent() []canbus.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]canbus.Frame(nil), c.sent...)
}

// ResetSent clears the record of received frames.
func (c *Controller) ResetSent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = nil
}

// Memory returns a copy of the configuration store.
func (c *Controller) Memory() protocol.MemoryImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory
}

// Position returns the current raw position.
func (c *Controller) Position() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Mode returns the last value written to the mode register.
func (c *Controller) Mode() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// CloseCount returns how many times Close was called.
func (c *Controller) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCount
}
