package scpi

import (
	"strconv"
	"strings"
)

func parseFloat(cmd, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ProtocolError{Cmd: cmd, Raw: s, Reason: "expected float"}
	}
	return f, nil
}

func parseInt(cmd, s string) (int, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ProtocolError{Cmd: cmd, Raw: s, Reason: "expected integer"}
	}
	return int(i), nil
}

func parseBool(cmd, s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "1", "ON":
		return true, nil
	case "0", "OFF":
		return false, nil
	default:
		return false, &ProtocolError{Cmd: cmd, Raw: s, Reason: "expected boolean (0/1/ON/OFF)"}
	}
}

// parseSystemError parses a system error queue response of the form
// <code>,"<message>". The quotes around the message are optional and the
// message may itself contain commas.
func parseSystemError(cmd, s string) (int, string, error) {
	i := strings.Index(s, ",")
	if i < 0 {
		return 0, "", &ProtocolError{Cmd: cmd, Raw: s, Reason: "expected <code>,\"<message>\""}
	}
	code, err := strconv.Atoi(strings.TrimSpace(s[:i]))
	if err != nil {
		return 0, "", &ProtocolError{Cmd: cmd, Raw: s, Reason: "expected integer error code"}
	}
	msg := strings.TrimSpace(s[i+1:])
	if len(msg) >= 2 && msg[0] == '"' && msg[len(msg)-1] == '"' {
		msg = msg[1 : len(msg)-1]
	}
	return code, msg, nil
}
