package websocket

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog"
)

// Conn represents one open, handshake-completed
// server-side connection to a WebSocket client.
type Conn struct {
	id     string
	logger zerolog.Logger
	raw    net.Conn
	r      *bufio.Reader
	w      *bufio.Writer

	// writeMu serializes concurrent calls to SendMessage: a connection may
	// be written to both by its own read loop (e.g. a Pong reply) and by a
	// registry broadcast running on a different goroutine.
	writeMu sync.Mutex

	// closed is monotonic (false to true) and safe for concurrent access,
	// so IsClosed can be polled from any goroutine without a stream-clone
	// probe.
	closed atomic.Bool
}

// Accept completes the opening HTTP Upgrade handshake over raw, and
// returns an open [Conn] ready for message exchange. The caller retains
// ownership of raw's lifecycle; closing the returned Conn closes raw.
func Accept(raw net.Conn, logger zerolog.Logger) (*Conn, error) {
	// Sized to at least handshakeBufSize: Handshake peeks up to that many
	// bytes, and bufio.Reader.Peek(n) can never return more than it was
	// constructed to buffer.
	r := bufio.NewReaderSize(raw, handshakeBufSize)
	w := bufio.NewWriter(raw)

	id := shortuuid.New()
	connLogger := logger.With().Str("conn_id", id).Logger()

	if err := Handshake(r, w, connLogger); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, newIOError(err)
	}

	return &Conn{
		id:     id,
		logger: connLogger,
		raw:    raw,
		r:      r,
		w:      w,
	}, nil
}

// ID returns the connection's short, unique identifier, assigned at
// handshake completion. It carries no protocol meaning; it exists for log
// correlation and as the registry's diagnostic handle key.
func (c *Conn) ID() string {
	return c.id
}

// IsClosed reports whether the connection has sent or received a Close
// message, or has failed with an I/O or protocol error.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// ReadMessage blocks until a single WebSocket message has been read from
// the peer, or an error occurs. Fragmented messages are not reassembled:
// each frame is mapped to a Message on its own, regardless of FIN; a bare
// Continuation opcode has no Message counterpart and surfaces as
// [ErrInvalidFrame].
//
// On any error, the connection is marked closed; callers should stop
// calling ReadMessage and discard the connection.
func (c *Conn) ReadMessage() (Message, error) {
	frame, err := readFrame(c.r)
	if err != nil {
		c.closed.Store(true)
		return Message{}, err
	}

	msg, err := frameToMessage(c, frame)
	if err != nil {
		c.closed.Store(true)
		return Message{}, err
	}

	if msg.Kind == MessageClose {
		c.closed.Store(true)
	}

	return msg, nil
}

// SendMessage serializes and writes msg as a single frame to the peer.
// It is safe to call concurrently with other SendMessage calls and with
// a concurrent ReadMessage call.
func (c *Conn) SendMessage(msg Message) error {
	op, payload, err := messageToFrame(msg)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := writeFrame(c.w, op, payload); err != nil {
		c.closed.Store(true)
		return err
	}

	if msg.Kind == MessageClose {
		c.closed.Store(true)
	}

	return nil
}

// SetIdleDeadline sets a read/write deadline on the underlying network
// connection, surfacing as an [*IOError] on the next [Conn.ReadMessage]
// or [Conn.SendMessage] call if it elapses. A zero d clears any deadline.
// This is not part of the core protocol contract; callers that want to
// bound resource usage per idle connection may use it.
func (c *Conn) SetIdleDeadline(d time.Duration) error {
	if d == 0 {
		return c.raw.SetDeadline(time.Time{})
	}
	return c.raw.SetDeadline(time.Now().Add(d))
}

// Close closes the underlying network connection immediately, without
// performing the WebSocket closing handshake. Callers that want a clean
// closing handshake should first send a [MessageClose] via SendMessage.
func (c *Conn) Close() error {
	c.closed.Store(true)
	return c.raw.Close()
}
