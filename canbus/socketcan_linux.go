//go:build linux

package canbus

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

type socketCAN struct {
	fd     int
	ifname string

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// OpenSocketCAN binds a raw CAN socket to the named network interface.
// The interface must already be up at the desired bit rate.
func OpenSocketCAN(ifname string) (Bus, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", ifname, err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("open can socket: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: iface.Index}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", ifname, err)
	}

	return &socketCAN{fd: fd, ifname: ifname}, nil
}

func (s *socketCAN) Send(frame Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if _, err := unix.Write(s.fd, marshalCANFrame(frame)); err != nil {
		return fmt.Errorf("write %s: %w", s.ifname, err)
	}
	return nil
}

func (s *socketCAN) Receive(timeout time.Duration) (Frame, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Frame{}, false, ErrClosed
	}

	buf := make([]byte, canFrameSize)
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Frame{}, false, nil
		}
		// A zero SO_RCVTIMEO blocks forever.
		tv := unix.NsecToTimeval(max(remaining, time.Microsecond).Nanoseconds())
		if err := unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
			return Frame{}, false, fmt.Errorf("set receive timeout: %w", err)
		}

		n, err := unix.Read(s.fd, buf)
		switch {
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK):
			return Frame{}, false, nil
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return Frame{}, false, fmt.Errorf("read %s: %w", s.ifname, err)
		}

		frame, err := unmarshalCANFrame(buf[:n])
		if err != nil {
			continue
		}
		return frame, true, nil
	}
}

func (s *socketCAN) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		s.closeErr = unix.Close(s.fd)
	})
	return s.closeErr
}
