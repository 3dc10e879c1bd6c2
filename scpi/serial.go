package scpi

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"go.bug.st/serial"
	"golang.org/x/exp/slices"
)

var errNoDefaultPort = errors.New("default port could not be detected")

// DefaultBaudRate is the default serial baud rate (USB-CDC instruments
// ignore it; RS-232 instruments commonly ship at 115200).
const DefaultBaudRate = 115200

// AvailablePorts returns the names of the local serial ports, sorted.
func AvailablePorts() ([]string, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// DefaultPortName returns the first serial port matching the platform's
// USB-serial naming convention, and an error if none is present.
func DefaultPortName() (string, error) {
	names, err := AvailablePorts()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if strings.HasPrefix(name, defaultPortPathPrefix) {
			return name, nil
		}
	}
	return "", &ConnError{Op: "detect port", Err: errNoDefaultPort}
}

// SerialTransport implements Transport over a local serial port (USB-CDC,
// RS-232, virtual COM ports).
type SerialTransport struct {
	portName string
	baudRate int
	timeout  time.Duration
	port     serial.Port
	buf      []byte // carry-over of bytes read past the last line
}

// NewSerialTransport returns a new, disconnected serial transport. A baud
// rate <= 0 selects DefaultBaudRate; a timeout <= 0 selects DefaultTimeout.
func NewSerialTransport(portName string, baudRate int, timeout time.Duration) *SerialTransport {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SerialTransport{portName: portName, baudRate: baudRate, timeout: timeout}
}

// PortName returns the configured port identifier.
func (t *SerialTransport) PortName() string { return t.portName }

// BaudRate returns the configured baud rate.
func (t *SerialTransport) BaudRate() int { return t.baudRate }

// Timeout returns the default operation timeout.
func (t *SerialTransport) Timeout() time.Duration { return t.timeout }

// SetTimeout sets the default operation timeout.
func (t *SerialTransport) SetTimeout(timeout time.Duration) { t.timeout = timeout }

// Connect implements the Transport interface.
func (t *SerialTransport) Connect() error {
	if t.port != nil {
		return nil
	}
	port, err := serial.Open(t.portName, &serial.Mode{BaudRate: t.baudRate})
	if err != nil {
		return &ConnError{Op: "connect", Err: err}
	}
	t.port = port
	return nil
}

// Disconnect implements the Transport interface.
func (t *SerialTransport) Disconnect() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	t.buf = nil
	return err
}

// IsConnected implements the Transport interface.
func (t *SerialTransport) IsConnected() bool { return t.port != nil }

func (t *SerialTransport) drop() {
	if t.port != nil {
		t.port.Close()
		t.port = nil
	}
	t.buf = nil
}

// Send implements the Transport interface.
func (t *SerialTransport) Send(cmd string) error {
	return t.write("send", appendTerminator(cmd))
}

// SendRaw implements the Transport interface.
func (t *SerialTransport) SendRaw(data []byte) error {
	return t.write("send raw", data)
}

func (t *SerialTransport) write(op string, data []byte) error {
	if t.port == nil {
		return &ConnError{Op: op, Err: errNotConnected}
	}
	if _, err := t.port.Write(data); err != nil {
		t.drop()
		return &ConnError{Op: op, Err: err}
	}
	return nil
}

// Receive implements the Transport interface. The read timeout of the port
// is re-armed with the remaining time on every iteration, keeping the
// cumulative wait within the stated timeout.
func (t *SerialTransport) Receive(timeout time.Duration) (string, error) {
	if t.port == nil {
		return "", &ConnError{Op: "receive", Err: errNotConnected}
	}
	d := effectiveTimeout(timeout, t.timeout)
	deadline := time.Now().Add(d)

	chunk := make([]byte, 4096)
	for {
		if i := bytes.IndexByte(t.buf, terminator); i >= 0 {
			line := trimLine(t.buf[:i])
			t.buf = append([]byte(nil), t.buf[i+1:]...)
			return line, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", &TimeoutError{Op: "receive", Timeout: d}
		}
		n, err := t.read(chunk, remaining)
		if err != nil {
			return "", err
		}
		if n == 0 { // read timeout elapsed without data
			return "", &TimeoutError{Op: "receive", Timeout: d}
		}
		t.buf = append(t.buf, chunk[:n]...)
	}
}

// ReceiveRaw implements the Transport interface.
func (t *SerialTransport) ReceiveRaw(count int, timeout time.Duration) ([]byte, error) {
	if t.port == nil {
		return nil, &ConnError{Op: "receive raw", Err: errNotConnected}
	}
	d := effectiveTimeout(timeout, t.timeout)
	deadline := time.Now().Add(d)

	chunk := make([]byte, 4096)
	for len(t.buf) < count {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &TimeoutError{Op: "receive raw", Timeout: d}
		}
		n, err := t.read(chunk, remaining)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, &TimeoutError{Op: "receive raw", Timeout: d}
		}
		t.buf = append(t.buf, chunk[:n]...)
	}
	data := append([]byte(nil), t.buf[:count]...)
	t.buf = append([]byte(nil), t.buf[count:]...)
	return data, nil
}

// read performs one bounded port read. go.bug.st/serial reports an elapsed
// read timeout as (0, nil).
func (t *SerialTransport) read(chunk []byte, timeout time.Duration) (int, error) {
	if err := t.port.SetReadTimeout(timeout); err != nil {
		t.drop()
		return 0, &ConnError{Op: "receive", Err: err}
	}
	n, err := t.port.Read(chunk)
	if err != nil {
		t.drop()
		return 0, &ConnError{Op: "receive", Err: err}
	}
	return n, nil
}

// Flush implements the Transport interface. It discards the carry-over
// buffer and resets the port's input buffer.
func (t *SerialTransport) Flush() error {
	t.buf = nil
	if t.port == nil {
		return nil
	}
	return t.port.ResetInputBuffer()
}
