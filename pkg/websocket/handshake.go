package websocket

import (
	"bufio"
	"bytes"
	"crypto/sha1" //gosec:disable G505 // Required by the WebSocket protocol.
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// handshakeBufSize bounds how far ahead we peek to find the end of the
// opening HTTP request's headers, without consuming any bytes that belong
// to a pipelined WebSocket frame.
const handshakeBufSize = 8192

var acceptGUID = []byte("258EAFA5-E914-47DA-95CA-C5AB0DC85B11")

// Handshake completes the opening HTTP Upgrade handshake defined in
// https://datatracker.ietf.org/doc/html/rfc6455#section-4.2, reading the
// client's request from r and writing the "101 Switching Protocols"
// response to w. On success, r is left positioned immediately after the
// request's header block, ready for binary frame parsing.
func Handshake(r *bufio.Reader, w io.Writer, logger zerolog.Logger) error {
	var head []byte
	idx := -1
	for {
		head, _ = r.Peek(r.Buffered())
		if idx = bytes.Index(head, []byte("\r\n\r\n")); idx >= 0 || len(head) >= handshakeBufSize {
			break
		}
		// Read more only while the header terminator is not yet buffered,
		// so a short request on a live connection never blocks here.
		if _, err := r.Peek(len(head) + 1); err == bufio.ErrBufferFull || err == io.EOF {
			break
		} else if err != nil {
			return newIOError(err)
		}
	}

	if idx < 0 {
		logger.Debug().Msg("WebSocket handshake request header block not found")
		return newHandshakeError(HandshakeInvalidKey, "incomplete or oversized request header")
	}

	headerBlock := head[:idx]
	headers := parseHeaderLines(headerBlock)

	if !strings.EqualFold(headers["upgrade"], "websocket") {
		logger.Debug().Str("upgrade", headers["upgrade"]).Msg("missing or invalid Upgrade header")
		return newHandshakeError(HandshakeInvalidKey, "missing or invalid Upgrade header")
	}

	fields := strings.Fields(headers["sec-websocket-key"])
	if len(fields) == 0 {
		logger.Debug().Msg("missing Sec-WebSocket-Key header")
		return newHandshakeError(HandshakeMissingKey, "")
	}
	key := fields[0]

	if _, err := r.Discard(idx + 4); err != nil {
		return newIOError(err)
	}

	accept := acceptKey(key)
	resp := fmt.Sprintf(
		"HTTP/1.1 101 Switching Protocols\r\n"+
			"Upgrade: websocket\r\n"+
			"Connection: Upgrade\r\n"+
			"Sec-WebSocket-Accept: %s\r\n\r\n", accept)

	if _, err := io.WriteString(w, resp); err != nil {
		return newIOError(err)
	}

	return nil
}

// parseHeaderLines splits a raw HTTP header block (request line included)
// into a lower-cased header-name to value map. Only the first occurrence
// of each header is kept, which is sufficient for the headers this
// handshake cares about.
func parseHeaderLines(block []byte) map[string]string {
	headers := make(map[string]string)
	lines := bytes.Split(block, []byte("\r\n"))
	for _, line := range lines {
		i := bytes.IndexByte(line, ':')
		if i < 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(string(line[:i])))
		value := strings.TrimSpace(string(line[i+1:]))
		if _, exists := headers[name]; !exists {
			headers[name] = value
		}
	}
	return headers
}

// acceptKey computes the "Sec-WebSocket-Accept" header value, as defined in
// https://datatracker.ietf.org/doc/html/rfc6455#section-4.2.2.
func acceptKey(clientKey string) string {
	h := sha1.New() //gosec:disable G401 // Required by the WebSocket protocol.
	h.Write([]byte(clientKey))
	h.Write(acceptGUID)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
