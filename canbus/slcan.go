package canbus

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"go.bug.st/serial"
)

// slcanBitrates maps CAN bit rates to the Lawicel "Sn" setup codes.
var slcanBitrates = map[int]byte{
	10000:   '0',
	20000:   '1',
	50000:   '2',
	100000:  '3',
	125000:  '4',
	250000:  '5',
	500000:  '6',
	800000:  '7',
	1000000: '8',
}

// TimeoutPort is the serial capability an SLCAN bus needs. go.bug.st/serial
// ports satisfy it; tests substitute fakes.
type TimeoutPort interface {
	io.ReadWriteCloser
	SetReadTimeout(timeout time.Duration) error
}

// SLCAN is a Bus over a serial-line CAN adapter speaking the Lawicel ASCII
// protocol.
type SLCAN struct {
	port    TimeoutPort
	pending []byte
	buf     []byte

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// OpenSLCAN opens the serial device at path, configures the adapter for the
// given CAN bit rate and opens the channel.
func OpenSLCAN(path string, bitrate, ttyBaudrate int) (*SLCAN, error) {
	code, ok := slcanBitrates[bitrate]
	if !ok {
		return nil, fmt.Errorf("unsupported slcan bitrate %d", bitrate)
	}

	port, err := serial.Open(path, &serial.Mode{
		BaudRate: ttyBaudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}

	bus := NewSLCAN(port)
	if err := bus.setup(code); err != nil {
		_ = port.Close()
		return nil, err
	}
	return bus, nil
}

// NewSLCAN wraps an already opened port. The adapter is assumed to be
// configured and open.
func NewSLCAN(port TimeoutPort) *SLCAN {
	return &SLCAN{
		port: port,
		buf:  make([]byte, 256),
	}
}

// setup closes any previously open channel, selects the bit rate and opens
// the channel. Adapter replies are left in the stream and skipped by Receive.
func (s *SLCAN) setup(code byte) error {
	for _, cmd := range []string{"C\r", "S" + string(code) + "\r", "O\r"} {
		if _, err := s.port.Write([]byte(cmd)); err != nil {
			return fmt.Errorf("slcan setup %q: %w", cmd[:len(cmd)-1], err)
		}
	}
	return nil
}

// Send implements Bus.
func (s *SLCAN) Send(frame Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.port.Write([]byte(EncodeSLCAN(frame)))
	return err
}

// Receive implements Bus. Adapter status replies and extended frames are
// skipped.
func (s *SLCAN) Receive(timeout time.Duration) (Frame, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Frame{}, false, ErrClosed
	}

	deadline := time.Now().Add(timeout)
	for {
		for {
			line, ok := s.nextLine()
			if !ok {
				break
			}
			if frame, err := DecodeSLCAN(line); err == nil {
				return frame, true, nil
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Frame{}, false, nil
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return Frame{}, false, err
		}
		n, err := s.port.Read(s.buf)
		if err != nil {
			return Frame{}, false, err
		}
		s.pending = append(s.pending, s.buf[:n]...)
	}
}

// nextLine pops one CR- or BEL-terminated record from the pending buffer.
func (s *SLCAN) nextLine() (string, bool) {
	i := bytes.IndexAny(s.pending, "\r\a")
	if i < 0 {
		return "", false
	}
	line := string(s.pending[:i])
	s.pending = s.pending[i+1:]
	return line, true
}

// Close closes the CAN channel and the serial port.
func (s *SLCAN) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		_, _ = s.port.Write([]byte("C\r"))
		s.closeErr = s.port.Close()
	})
	return s.closeErr
}

// EncodeSLCAN renders a standard data frame as an SLCAN transmit command,
// e.g. "t3F084900000000000000\r".
func EncodeSLCAN(frame Frame) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "t%03X%d", frame.ID&MaxStandardID, PayloadSize)
	for _, v := range frame.Data {
		fmt.Fprintf(&b, "%02X", v)
	}
	b.WriteByte('\r')
	return b.String()
}

// DecodeSLCAN parses one received SLCAN record without its terminator.
// Only standard data frames ('t') are accepted. A trailing 4-digit timestamp
// is tolerated. Frames shorter than 8 bytes are zero padded.
func DecodeSLCAN(line string) (Frame, error) {
	if len(line) < 5 || line[0] != 't' {
		return Frame{}, fmt.Errorf("not a standard slcan frame: %q", line)
	}

	id, err := strconv.ParseUint(line[1:4], 16, 32)
	if err != nil {
		return Frame{}, fmt.Errorf("invalid slcan id %q: %w", line[1:4], err)
	}

	dlc := int(line[4] - '0')
	if dlc < 0 || dlc > PayloadSize {
		return Frame{}, fmt.Errorf("invalid slcan length %q", line[4])
	}

	payload := line[5:]
	switch len(payload) {
	case dlc * 2, dlc*2 + 4:
	default:
		return Frame{}, fmt.Errorf("slcan payload length %d does not match dlc %d", len(payload), dlc)
	}

	data, err := hex.DecodeString(payload[:dlc*2])
	if err != nil {
		return Frame{}, fmt.Errorf("invalid slcan payload: %w", err)
	}
	return NewFrame(uint32(id), data...), nil
}
