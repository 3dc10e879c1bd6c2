package scpi

import (
	"bytes"
	"net"
	"time"
)

// DefaultTCPPort is the default TCP port of LAN/LXI instrument raw-socket
// SCPI servers.
const DefaultTCPPort = "5555"

// TCPTransport implements Transport over a TCP connection to a LAN/LXI
// instrument.
type TCPTransport struct {
	host, port string
	timeout    time.Duration
	conn       net.Conn
	buf        []byte // carry-over of bytes read past the last line
}

// NewTCPTransport returns a new, disconnected TCP transport. An empty port
// selects DefaultTCPPort; a timeout <= 0 selects DefaultTimeout.
func NewTCPTransport(host, port string, timeout time.Duration) *TCPTransport {
	if port == "" {
		port = DefaultTCPPort
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TCPTransport{host: host, port: port, timeout: timeout}
}

// Host returns the configured host address.
func (t *TCPTransport) Host() string { return t.host }

// Port returns the configured port number.
func (t *TCPTransport) Port() string { return t.port }

// Timeout returns the default operation timeout.
func (t *TCPTransport) Timeout() time.Duration { return t.timeout }

// SetTimeout sets the default operation timeout.
func (t *TCPTransport) SetTimeout(timeout time.Duration) { t.timeout = timeout }

// Connect implements the Transport interface.
func (t *TCPTransport) Connect() error {
	if t.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(t.host, t.port), t.timeout)
	if err != nil {
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			return &TimeoutError{Op: "connect", Timeout: t.timeout}
		}
		return &ConnError{Op: "connect", Err: err}
	}
	t.conn = conn
	return nil
}

// Disconnect implements the Transport interface.
func (t *TCPTransport) Disconnect() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.buf = nil
	return err
}

// IsConnected implements the Transport interface.
func (t *TCPTransport) IsConnected() bool { return t.conn != nil }

// drop releases the connection after an unrecoverable failure.
func (t *TCPTransport) drop() {
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
	}
	t.buf = nil
}

// Send implements the Transport interface.
func (t *TCPTransport) Send(cmd string) error {
	return t.write("send", appendTerminator(cmd))
}

// SendRaw implements the Transport interface.
func (t *TCPTransport) SendRaw(data []byte) error {
	return t.write("send raw", data)
}

func (t *TCPTransport) write(op string, data []byte) error {
	if t.conn == nil {
		return &ConnError{Op: op, Err: errNotConnected}
	}
	t.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	if _, err := t.conn.Write(data); err != nil {
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			return &TimeoutError{Op: op, Timeout: t.timeout}
		}
		t.drop()
		return &ConnError{Op: op, Err: err}
	}
	return nil
}

// Receive implements the Transport interface. The timeout is armed once as
// an absolute deadline, so the cumulative wait over any number of partial
// reads never exceeds it.
func (t *TCPTransport) Receive(timeout time.Duration) (string, error) {
	if t.conn == nil {
		return "", &ConnError{Op: "receive", Err: errNotConnected}
	}
	d := effectiveTimeout(timeout, t.timeout)
	t.conn.SetReadDeadline(time.Now().Add(d))

	chunk := make([]byte, 4096)
	for {
		if i := bytes.IndexByte(t.buf, terminator); i >= 0 {
			line := trimLine(t.buf[:i])
			t.buf = append([]byte(nil), t.buf[i+1:]...)
			return line, nil
		}
		n, err := t.conn.Read(chunk)
		t.buf = append(t.buf, chunk[:n]...)
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				return "", &TimeoutError{Op: "receive", Timeout: d}
			}
			t.drop()
			return "", &ConnError{Op: "receive", Err: err}
		}
	}
}

// ReceiveRaw implements the Transport interface.
func (t *TCPTransport) ReceiveRaw(count int, timeout time.Duration) ([]byte, error) {
	if t.conn == nil {
		return nil, &ConnError{Op: "receive raw", Err: errNotConnected}
	}
	d := effectiveTimeout(timeout, t.timeout)
	t.conn.SetReadDeadline(time.Now().Add(d))

	chunk := make([]byte, 4096)
	for len(t.buf) < count {
		n, err := t.conn.Read(chunk)
		t.buf = append(t.buf, chunk[:n]...)
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				return nil, &TimeoutError{Op: "receive raw", Timeout: d}
			}
			t.drop()
			return nil, &ConnError{Op: "receive raw", Err: err}
		}
	}
	data := append([]byte(nil), t.buf[:count]...)
	t.buf = append([]byte(nil), t.buf[count:]...)
	return data, nil
}

// Flush implements the Transport interface. It discards the carry-over
// buffer and drains input that is already pending on the socket.
func (t *TCPTransport) Flush() error {
	t.buf = nil
	if t.conn == nil {
		return nil
	}
	t.conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	chunk := make([]byte, 4096)
	for {
		if _, err := t.conn.Read(chunk); err != nil {
			break
		}
	}
	return nil
}
