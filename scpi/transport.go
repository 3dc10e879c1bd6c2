// Package scpi implements the transport and session core of the SCPI
// (IEEE 488.2) instrument command protocol: a line-oriented, half-duplex
// request/response protocol over a stream transport.
package scpi

import (
	"errors"
	"time"
)

// DefaultTimeout is the default timeout applied to connect and receive
// operations when the caller does not configure one.
const DefaultTimeout = 5 * time.Second

// terminator marks the end of a command or response line.
const terminator = '\n'

var errNotConnected = errors.New("not connected")

// Transport is a connection oriented byte stream to an instrument.
//
// A Transport is constructed disconnected. Send and Receive must not be
// called before Connect succeeds; they fail with a connection error
// otherwise. A Transport never reconnects on its own.
//
// A Transport is not safe for concurrent use by multiple goroutines
// without external synchronization. The protocol is strictly half-duplex:
// exactly one command or query may be outstanding at a time.
type Transport interface {
	// Connect establishes the connection within the configured timeout.
	Connect() error
	// Disconnect releases the connection. It is idempotent: calling it on
	// a disconnected transport is a no-op, never an error.
	Disconnect() error
	// Send writes one command line, appending the terminator if absent.
	Send(cmd string) error
	// SendRaw writes bytes as-is, without terminator handling.
	SendRaw(data []byte) error
	// Receive blocks until a complete terminated line is available or the
	// timeout elapses, and returns the line with the terminator stripped.
	// A timeout <= 0 selects the transport's default. Partial reads are
	// accumulated internally; after a timeout the transport stays
	// connected and a later Receive resumes from the buffered state.
	Receive(timeout time.Duration) (string, error)
	// ReceiveRaw blocks until exactly count bytes are available or the
	// timeout elapses. Used for fixed-length binary payloads, which are
	// framed by a caller-supplied byte count rather than a terminator.
	ReceiveRaw(count int, timeout time.Duration) ([]byte, error)
	// Flush discards buffered input that has not been consumed yet.
	Flush() error
	// IsConnected reports the connection status without side effects.
	IsConnected() bool
}

// effectiveTimeout resolves a per-call timeout against a default.
func effectiveTimeout(timeout, def time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	if def > 0 {
		return def
	}
	return DefaultTimeout
}

// appendTerminator returns cmd with the line terminator appended if absent.
func appendTerminator(cmd string) []byte {
	if len(cmd) > 0 && cmd[len(cmd)-1] == terminator {
		return []byte(cmd)
	}
	return append([]byte(cmd), terminator)
}

// trimLine strips the trailing carriage return left over when a peer
// terminates lines with CR LF.
func trimLine(line []byte) string {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return string(line)
}
