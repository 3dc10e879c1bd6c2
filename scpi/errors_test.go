package scpi_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/scpi-core/go-scpi/scpi"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"Connection", &scpi.ConnError{Op: "connect", Err: errors.New("refused")}, scpi.IsConnection},
		{"Timeout", &scpi.TimeoutError{Op: "receive", Timeout: time.Second}, scpi.IsTimeout},
		{"Protocol", &scpi.ProtocolError{Cmd: "*IDN?", Raw: "x", Reason: "expected float"}, scpi.IsProtocol},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if !test.is(test.err) {
				t.Errorf("%v does not match its own kind", test.err)
			}
			if !errors.Is(test.err, scpi.ErrSCPI) {
				t.Errorf("%v does not match the root error", test.err)
			}
			// exactly one kind matches
			kinds := 0
			for _, is := range []func(error) bool{scpi.IsConnection, scpi.IsTimeout, scpi.IsProtocol} {
				if is(test.err) {
					kinds++
				}
			}
			if kinds != 1 {
				t.Errorf("%v matches %d kinds - expected 1", test.err, kinds)
			}
		})
	}
}

func TestErrorKindsWrapped(t *testing.T) {
	err := fmt.Errorf("query failed: %w", &scpi.TimeoutError{Op: "receive", Timeout: time.Second})
	if !scpi.IsTimeout(err) {
		t.Errorf("wrapped timeout error not recognized: %v", err)
	}
	if !errors.Is(err, scpi.ErrSCPI) {
		t.Errorf("wrapped error does not match the root error: %v", err)
	}
}

func TestConnErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &scpi.ConnError{Op: "connect", Err: cause}
	if !errors.Is(err, cause) {
		t.Errorf("underlying cause not reachable via errors.Is: %v", err)
	}
}

func TestInstrumentError(t *testing.T) {
	err := &scpi.InstrumentError{Code: 113, Message: "Undefined header"}
	want := "instrument error 113: Undefined header"
	if err.Error() != want {
		t.Errorf("got %q - expected %q", err.Error(), want)
	}
}
