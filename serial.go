package rover

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// defaultBaudRate is the rover's baud rate. The other link parameters are
// 8 data bits, 1 stop bit (serial.OneStopBit), no parity, no flow control.
const defaultBaudRate = 57600

// outboundHighWater is the pending-byte count at which WriteNoWait logs a
// backpressure warning. inboundHighWater is not consulted by the read
// path.
const (
	outboundHighWater = 8000
	inboundHighWater  = 4000
)

// pollInterval is how often the endpoint re-checks for new bytes or a
// cancelled context while waiting on the port — grounded on SerialTrio's
// 0.001s trio.sleep poll loop, reimplemented as a short read timeout
// instead of a buffered-byte-count poll, since go.bug.st/serial exposes
// read-with-timeout but not pyserial's in_waiting counter.
const pollInterval = 2 * time.Millisecond

// SerialConfig configures how OpenSerialEndpoint dials the physical port.
type SerialConfig struct {
	BaudRate int
	StopBits serial.StopBits
}

// DefaultSerialConfig returns the rover's default link parameters.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{BaudRate: defaultBaudRate, StopBits: serial.OneStopBit}
}

// SerialEndpoint is the scoped, cancellable wrapper over a single opened
// serial port (C1). It owns exactly one go.bug.st/serial.Port and
// guarantees the OS handle is released on every exit path through Close.
type SerialEndpoint struct {
	port string

	mu     sync.Mutex
	handle serial.Port
	closed bool

	outboundPending int
}

// OpenSerialEndpoint opens the named serial port with the rover's link
// parameters (or the overrides in cfg).
func OpenSerialEndpoint(path string, cfg SerialConfig) (*SerialEndpoint, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = defaultBaudRate
	}
	if cfg.StopBits == 0 {
		cfg.StopBits = serial.OneStopBit
	}
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: cfg.StopBits,
	}
	handle, err := serial.Open(path, mode)
	if err != nil {
		return nil, classifyOpenError(path, err)
	}
	// Exclusive access is left to the OS (go.bug.st/serial opens
	// exclusively by default on the platforms it supports); this package
	// keeps no record of which paths are already open.
	if err := handle.SetReadTimeout(pollInterval); err != nil {
		handle.Close()
		return nil, newError(KindDeviceAccess, "could not configure read timeout", err)
	}
	return &SerialEndpoint{port: path, handle: handle}, nil
}

func classifyOpenError(path string, err error) error {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound:
			return newError(KindDeviceNotFound, path, err)
		case serial.InvalidSerialPort:
			return newError(KindDeviceAccess, path+" is not a serial device", err)
		case serial.PermissionDenied:
			return newError(KindDeviceAccess, path+" permission denied", err)
		case serial.PortBusy:
			return newError(KindDeviceAccess, path+" already in use", err)
		}
	}
	return newError(KindDeviceAccess, path, err)
}

// ReadUntil returns the accumulated bytes up to and including terminator,
// a single byte in this protocol (the frame start byte). It cooperates
// with ctx: on cancellation the partial buffer is discarded and ctx.Err()
// is returned.
func (s *SerialEndpoint) ReadUntil(ctx context.Context, terminator byte) ([]byte, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		n, err := s.readNoWait(buf)
		if err != nil {
			return nil, err
		}
		if n == 1 {
			line = append(line, buf[0])
			if buf[0] == terminator {
				return line, nil
			}
		}
	}
}

// ReadExactly returns exactly n bytes, cooperating with ctx the same way
// ReadUntil does.
func (s *SerialEndpoint) ReadExactly(ctx context.Context, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		m, err := s.readNoWait(buf[:n-len(out)])
		if err != nil {
			return nil, err
		}
		out = append(out, buf[:m]...)
	}
	return out, nil
}

// readNoWait issues one bounded read on the underlying port. A timeout
// with zero bytes read is not an error — it is how the poll loop yields
// to ctx cancellation, matching SerialTrio's behavior of treating a
// read-with-nothing-available as "try again" rather than failure.
func (s *SerialEndpoint) readNoWait(buf []byte) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, newError(KindDeviceClosed, "", nil)
	}
	handle := s.handle
	s.mu.Unlock()

	n, err := handle.Read(buf)
	if err != nil {
		return 0, newError(KindDeviceClosed, "read failed", err)
	}
	if n == 0 {
		return 0, nil
	}
	return n, nil
}

// WriteNoWait queues data for transmission. It does not suspend: it is the
// one non-suspending I/O operation this endpoint exposes.
func (s *SerialEndpoint) WriteNoWait(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return newError(KindDeviceClosed, "", nil)
	}
	n, err := s.handle.Write(data)
	if err != nil {
		return newError(KindDeviceClosed, "write failed", err)
	}
	s.outboundPending += n
	if s.outboundPending >= outboundHighWater {
		warnf("outgoing buffer is backlogged, data may be lost (%d bytes queued)", s.outboundPending)
	}
	return nil
}

// Flush resets the pending-byte count used for the backpressure warning
// and returns at once (with ctx.Err() if ctx is already done). Writes go
// synchronously through the OS handle, so there is no host-side queue to
// wait on; n is not consulted.
func (s *SerialEndpoint) Flush(ctx context.Context, n int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return newError(KindDeviceClosed, "", nil)
	}
	s.outboundPending = 0
	s.mu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Close releases the OS handle; it does not wait for written bytes to
// drain first. Safe to call more than once.
func (s *SerialEndpoint) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.handle.Close()
}

// ftdiVendorID is the USB vendor ID FTDI's USB-to-serial chips register
// under, used as the discovery filter in place of pyserial's
// comport.manufacturer == "FTDI" string match (go.bug.st/serial's
// enumerator reports VID/PID, not a manufacturer string).
const ftdiVendorID = "0403"

// ListCandidatePorts enumerates serial ports whose USB vendor ID matches
// FTDI, mirroring find_device.get_ftdi_device_paths.
func ListCandidatePorts() ([]string, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, newError(KindProtocol, "could not list serial ports", err)
	}
	var candidates []string
	for _, d := range details {
		if d.IsUSB && strings.EqualFold(d.VID, ftdiVendorID) {
			candidates = append(candidates, d.Name)
		}
	}
	return candidates, nil
}
