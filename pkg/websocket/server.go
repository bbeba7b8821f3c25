package websocket

import (
	"errors"
	"net"

	"github.com/rs/zerolog"
)

// Server binds a listening socket and completes the WebSocket handshake
// for each accepted connection, publishing handshake-completed [Conn]
// values on a channel.
type Server struct {
	listener net.Listener
	logger   zerolog.Logger
	incoming chan *Conn
}

// Bind starts listening on addr (e.g. ":8080") and returns a [Server] that
// immediately begins accepting connections in the background. Call
// [Server.Incoming] to receive handshake-completed connections, and
// [Server.Close] to stop accepting and end the sequence.
func Bind(addr string, logger zerolog.Logger) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, newIOError(err)
	}

	s := &Server{
		listener: l,
		logger:   logger,
		incoming: make(chan *Conn),
	}

	go s.acceptLoop()

	return s, nil
}

// Addr returns the server's bound network address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops the server from accepting new connections, and closes the
// channel returned by [Server.Incoming] once the accept loop observes it.
func (s *Server) Close() error {
	return s.listener.Close()
}

// Incoming returns a channel that publishes each connection that
// completes the opening handshake successfully. TCP accept failures and
// handshake failures are logged and skipped; they never terminate the
// sequence. The channel is closed once the listening socket is closed.
func (s *Server) Incoming() <-chan *Conn {
	return s.incoming
}

// acceptLoop runs as the [Server]'s single accept goroutine, implementing
// the server as a lazy, unbounded sequence of handshake-completed
// connections: TCP accept failures and handshake failures are logged and
// skipped rather than terminating the sequence; only a closed listener
// ends it.
func (s *Server) acceptLoop() {
	defer close(s.incoming)

	for {
		raw, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn().Err(err).Msg("failed to accept WebSocket TCP connection")
			continue
		}

		conn, err := Accept(raw, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("WebSocket handshake failed")
			_ = raw.Close()
			continue
		}

		s.incoming <- conn
	}
}
