package scpi

import (
	"fmt"
	"strings"
	"time"
)

// IEEE 488.2 common commands and the system error query.
const (
	cmdIDN         = "*IDN?"
	cmdReset       = "*RST"
	cmdClearStatus = "*CLS"
	cmdOPC         = "*OPC?"
	cmdWait        = "*WAI"
	cmdSelfTest    = "*TST?"
	cmdSaveState   = "*SAV"
	cmdRecallState = "*RCL"
	cmdSystemError = ":SYST:ERR?"
)

// Device is a session with one SCPI instrument, built on a Transport. It
// owns command and query framing, typed response parsing and the IEEE 488.2
// common command vocabulary; the caller controls the connection lifecycle
// through Connect/Disconnect or WithConnection.
//
// A Device holds no protocol state between calls and never reconnects on
// its own. Transport errors propagate unchanged; only parse failures are
// wrapped (as protocol errors retaining the raw response).
//
// A Device is not safe for concurrent use by multiple goroutines without
// external synchronization: the protocol is half-duplex, so exactly one
// command or query may be outstanding at a time.
type Device struct {
	transport Transport
}

// NewDevice returns a device session on the given transport. The transport
// is shared by reference and left disconnected.
func NewDevice(transport Transport) *Device {
	return &Device{transport: transport}
}

// Transport returns the underlying transport.
func (d *Device) Transport() Transport { return d.transport }

// Connect connects the underlying transport.
func (d *Device) Connect() error { return d.transport.Connect() }

// Disconnect disconnects the underlying transport. Idempotent.
func (d *Device) Disconnect() error { return d.transport.Disconnect() }

// IsConnected reports whether the underlying transport is connected.
func (d *Device) IsConnected() bool { return d.transport.IsConnected() }

// WithConnection connects the transport, runs fn and disconnects on every
// exit path, including a panic inside fn.
func (d *Device) WithConnection(fn func(d *Device) error) error {
	if err := d.transport.Connect(); err != nil {
		return err
	}
	defer d.transport.Disconnect()
	return fn(d)
}

// Command sends a command with no response expected.
func (d *Device) Command(cmd string) error {
	return d.transport.Send(cmd)
}

// Query sends a query and returns the response line with the terminator
// stripped.
func (d *Device) Query(cmd string) (string, error) {
	if err := d.transport.Send(cmd); err != nil {
		return "", err
	}
	return d.transport.Receive(0)
}

// QueryTimeout is Query with an explicit receive timeout overriding the
// transport default.
func (d *Device) QueryTimeout(cmd string, timeout time.Duration) (string, error) {
	if err := d.transport.Send(cmd); err != nil {
		return "", err
	}
	return d.transport.Receive(timeout)
}

// QueryFloat sends a query and parses the response as a float. SCPI
// scientific notation (e.g. "2.00E+00") is accepted.
func (d *Device) QueryFloat(cmd string) (float64, error) {
	v, err := d.Query(cmd)
	if err != nil {
		return 0, err
	}
	return parseFloat(cmd, strings.TrimSpace(v))
}

// QueryInt sends a query and parses the response as an integer.
func (d *Device) QueryInt(cmd string) (int, error) {
	v, err := d.Query(cmd)
	if err != nil {
		return 0, err
	}
	return parseInt(cmd, strings.TrimSpace(v))
}

// QueryBool sends a query and parses a 0/1 or OFF/ON response
// (case-insensitive) as a bool.
func (d *Device) QueryBool(cmd string) (bool, error) {
	v, err := d.Query(cmd)
	if err != nil {
		return false, err
	}
	return parseBool(cmd, strings.TrimSpace(v))
}

// QueryRaw sends a query and reads exactly count raw bytes. The payload is
// framed by the caller-supplied count, not by a terminator; an underrun
// within the timeout is a timeout error.
func (d *Device) QueryRaw(cmd string, count int) ([]byte, error) {
	if err := d.transport.Send(cmd); err != nil {
		return nil, err
	}
	return d.transport.ReceiveRaw(count, 0)
}

// IDN queries the instrument identification (*IDN?).
func (d *Device) IDN() (string, error) {
	return d.Query(cmdIDN)
}

// Reset resets the instrument to factory defaults (*RST).
func (d *Device) Reset() error {
	return d.Command(cmdReset)
}

// ClearStatus clears the instrument status registers (*CLS).
func (d *Device) ClearStatus() error {
	return d.Command(cmdClearStatus)
}

// Wait tells the instrument to finish pending operations before executing
// further commands (*WAI).
func (d *Device) Wait() error {
	return d.Command(cmdWait)
}

// OPC queries operation complete (*OPC?) and returns true once the
// instrument answers "1", subject to the prevailing timeout.
func (d *Device) OPC() (bool, error) {
	v, err := d.Query(cmdOPC)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(v) == "1", nil
}

// SelfTest runs the instrument self-test (*TST?) and returns the result
// code. 0 conventionally means pass; the code is not interpreted here.
func (d *Device) SelfTest() (int, error) {
	return d.QueryInt(cmdSelfTest)
}

// SaveState saves the instrument state to internal memory slot (*SAV).
func (d *Device) SaveState(slot int) error {
	return d.Command(fmt.Sprintf("%s %d", cmdSaveState, slot))
}

// RecallState recalls the instrument state from internal memory slot (*RCL).
func (d *Device) RecallState(slot int) error {
	return d.Command(fmt.Sprintf("%s %d", cmdRecallState, slot))
}

// CheckError queries the instrument's system error queue. It returns
// (nil, nil) when the queue reports code 0 ("no error") and the reported
// (code, message) pair as an *InstrumentError otherwise. A malformed
// response is a protocol error.
func (d *Device) CheckError() (*InstrumentError, error) {
	v, err := d.Query(cmdSystemError)
	if err != nil {
		return nil, err
	}
	code, msg, err := parseSystemError(cmdSystemError, strings.TrimSpace(v))
	if err != nil {
		return nil, err
	}
	if code == 0 {
		return nil, nil
	}
	return &InstrumentError{Code: code, Message: msg}, nil
}
