package websocket

import (
	"encoding/binary"
	"strconv"
	"unicode/utf8"
)

// StatusCode indicates a reason for the closure of
// an established WebSocket connection, as defined in
// https://datatracker.ietf.org/doc/html/rfc6455#section-7.4.
//
// See also https://www.iana.org/assignments/websocket/websocket.xhtml#close-code-number.
//
// This package parses status codes only for diagnostic logging (see
// [frameToMessage]); they are never exposed through the [Message] API.
type StatusCode uint16

const (
	StatusNormalClosure StatusCode = iota + 1000
	StatusGoingAway
	StatusProtocolError
	StatusUnsupportedData
	_
	StatusNotReceived
	StatusClosedAbnormally
	StatusInvalidData
	StatusPolicyViolation
	StatusMessageTooBig
	StatusMandatoryExtension
	StatusInternalError
)

// String returns the status code's name, or its number if it's unrecognized.
func (s StatusCode) String() string {
	switch s {
	case StatusNormalClosure:
		return "normal closure"
	case StatusGoingAway:
		return "going away"
	case StatusProtocolError:
		return "protocol error"
	case StatusUnsupportedData:
		return "unsupported data"
	case StatusNotReceived:
		return "status not received"
	case StatusClosedAbnormally:
		return "closed abnormally"
	case StatusInvalidData:
		return "invalid data"
	case StatusPolicyViolation:
		return "policy violation"
	case StatusMessageTooBig:
		return "message too big"
	case StatusMandatoryExtension:
		return "expected extension negotiation"
	case StatusInternalError:
		return "internal error"
	default:
		return strconv.Itoa(int(s))
	}
}

// parseClosePayload extracts the [StatusCode] and optional UTF-8 reason
// from an incoming connection-close control frame's payload. It is used
// only to produce a diagnostic log line; the result is not returned to
// callers of [Conn.ReadMessage].
func parseClosePayload(payload []byte) (status StatusCode, reason string) {
	switch {
	case len(payload) == 0:
		return StatusNotReceived, ""
	case len(payload) == 1:
		return StatusProtocolError, ""
	default:
		status = StatusCode(binary.BigEndian.Uint16(payload))
	}

	if len(payload) > 2 {
		r := payload[2:]
		if utf8.Valid(r) {
			reason = string(r)
		} else {
			status = StatusInvalidData
		}
	}

	return status, reason
}
