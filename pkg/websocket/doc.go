// Package websocket is a lightweight yet robust server-side
// implementation of the WebSocket protocol (RFC 6455).
//
// It focuses on completing the opening HTTP Upgrade handshake, framing
// and parsing text/binary messages over a raw TCP stream, and exposing
// a minimal accept-loop for incoming connections.
//
// It is designed primarily for correctness and ease of embedding in a
// larger service, not for handling every corner of the protocol: message
// fragmentation is not reassembled, extensions and subprotocols are not
// negotiated, and outbound frames are never masked (a server MUST NOT
// mask frames it sends, per RFC 6455 section 5.1).
package websocket
