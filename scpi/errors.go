package scpi

import (
	"errors"
	"fmt"
	"time"
)

// ErrSCPI is the root error of the package. Every error returned by a
// Transport or Device matches ErrSCPI via errors.Is, in addition to exactly
// one of the three kind sentinels below.
var ErrSCPI = errors.New("scpi")

// Error kinds.
var (
	// ErrConnection indicates that a connection could not be established,
	// was lost, or was closed by the peer.
	ErrConnection = fmt.Errorf("%w: connection error", ErrSCPI)
	// ErrTimeout indicates that an operation did not complete before its
	// effective deadline.
	ErrTimeout = fmt.Errorf("%w: timeout", ErrSCPI)
	// ErrProtocol indicates that a response was received but could not be
	// interpreted as the requested type or shape.
	ErrProtocol = fmt.Errorf("%w: protocol error", ErrSCPI)
)

// ConnError is a connection failure during the named operation.
type ConnError struct {
	Op  string // operation that failed, e.g. "connect", "send", "receive"
	Err error  // underlying error, if any
}

func (e *ConnError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scpi: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("scpi: %s: connection error", e.Op)
}

func (e *ConnError) Unwrap() error { return e.Err }

// Is matches ConnError against the connection kind and the root error.
func (e *ConnError) Is(target error) bool {
	return target == ErrConnection || target == ErrSCPI
}

// TimeoutError is an expired deadline during the named operation.
type TimeoutError struct {
	Op      string
	Timeout time.Duration // the effective timeout that elapsed
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("scpi: %s: timeout after %s", e.Op, e.Timeout)
}

// Is matches TimeoutError against the timeout kind and the root error.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout || target == ErrSCPI
}

// ProtocolError is a response that was received but could not be parsed.
// Raw retains the original response text for diagnostics.
type ProtocolError struct {
	Cmd    string // the command or query that produced the response
	Raw    string // the original response text
	Reason string // what was expected instead
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("scpi: %s: %s, got %q", e.Cmd, e.Reason, e.Raw)
}

// Is matches ProtocolError against the protocol kind and the root error.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol || target == ErrSCPI
}

// IsConnection returns true if the error is a connection failure.
func IsConnection(err error) bool { return errors.Is(err, ErrConnection) }

// IsTimeout returns true if the error is a timeout failure.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsProtocol returns true if the error is a protocol failure.
func IsProtocol(err error) bool { return errors.Is(err, ErrProtocol) }

// InstrumentError is an error reported by the instrument itself through the
// system error queue (see Device.CheckError). It is not part of the
// transport error taxonomy: the query succeeded, the instrument complained.
type InstrumentError struct {
	Code    int
	Message string
}

func (e *InstrumentError) Error() string {
	return fmt.Sprintf("instrument error %d: %s", e.Code, e.Message)
}
