package websocket

import "unicode/utf8"

// MessageKind identifies the variant of a [Message], mirroring the closed
// set of application-level WebSocket message types defined in
// https://datatracker.ietf.org/doc/html/rfc6455#section-5.6 and
// https://datatracker.ietf.org/doc/html/rfc6455#section-5.5.
type MessageKind int

const (
	MessageText MessageKind = iota
	MessageBinary
	MessagePing
	MessagePong
	MessageClose
)

// Message is a single WebSocket message exchanged with a peer. Text
// carries its payload as UTF-8; the other kinds carry raw bytes (empty for
// Close, per this package's handling of close payloads, see
// [Conn.ReadMessage]). Fragmented messages are not reassembled: each
// inbound frame maps to exactly one Message.
type Message struct {
	Kind MessageKind
	Data []byte
}

// Text returns m's payload as a string, regardless of its Kind.
func (m Message) Text() string {
	return string(m.Data)
}

// NewTextMessage builds a text [Message] from s.
func NewTextMessage(s string) Message {
	return Message{Kind: MessageText, Data: []byte(s)}
}

// NewBinaryMessage builds a binary [Message] from b.
func NewBinaryMessage(b []byte) Message {
	return Message{Kind: MessageBinary, Data: b}
}

// NewCloseMessage builds a Close [Message] with no payload, matching this
// package's policy of never exposing close status codes through the
// public Message API (see [Conn.ReadMessage] for diagnostic-only parsing).
func NewCloseMessage() Message {
	return Message{Kind: MessageClose}
}

// frameToMessage maps a single parsed [Frame] to a [Message]. Opcodes with
// no message-level counterpart — Continuation chief among them, since
// fragmentation reassembly is out of scope for this package — surface as
// [ErrInvalidFrame].
func frameToMessage(c *Conn, f Frame) (Message, error) {
	switch f.Opcode {
	case OpcodeText:
		if !utf8.Valid(f.Payload) {
			return Message{}, ErrInvalidFrame
		}
		return Message{Kind: MessageText, Data: f.Payload}, nil
	case OpcodeBinary:
		return Message{Kind: MessageBinary, Data: f.Payload}, nil
	case OpcodePing:
		return Message{Kind: MessagePing, Data: f.Payload}, nil
	case OpcodePong:
		return Message{Kind: MessagePong, Data: f.Payload}, nil
	case OpcodeClose:
		if len(f.Payload) > 0 {
			status, reason := parseClosePayload(f.Payload)
			c.logger.Debug().Str("close_status", status.String()).Str("close_reason", reason).
				Msg("received WebSocket close frame")
		}
		return Message{Kind: MessageClose}, nil
	default:
		// Continuation, or any opcode readFrame should already have
		// rejected; kept here as a defensive, exhaustive default.
		return Message{}, ErrInvalidFrame
	}
}

// messageToFrame maps a [Message] to the opcode and payload that will be
// written as a single, unfragmented frame.
func messageToFrame(m Message) (Opcode, []byte, error) {
	switch m.Kind {
	case MessageText:
		if !utf8.Valid(m.Data) {
			return 0, nil, ErrInvalidFrame
		}
		return OpcodeText, m.Data, nil
	case MessageBinary:
		return OpcodeBinary, m.Data, nil
	case MessagePing:
		return OpcodePing, m.Data, nil
	case MessagePong:
		return OpcodePong, m.Data, nil
	case MessageClose:
		return OpcodeClose, nil, nil
	default:
		return 0, nil, ErrInvalidFrame
	}
}
