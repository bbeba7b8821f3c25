package websocket

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBindAndIncoming(t *testing.T) {
	srv, err := Bind("127.0.0.1:0", zerolog.Nop())
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer srv.Close()

	client, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("net.Dial() error = %v", err)
	}
	defer client.Close()

	request := "GET / HTTP/1.1\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n"
	if _, err := client.Write([]byte(request)); err != nil {
		t.Fatalf("failed to write handshake request: %v", err)
	}

	select {
	case conn := <-srv.Incoming():
		if conn == nil {
			t.Fatal("Incoming() delivered a nil *Conn")
		}
		defer conn.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for incoming connection")
	}
}

func TestBindSkipsFailedHandshake(t *testing.T) {
	srv, err := Bind("127.0.0.1:0", zerolog.Nop())
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	defer srv.Close()

	bad, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("net.Dial() error = %v", err)
	}
	if _, err := bad.Write([]byte("not an http request\r\n\r\n")); err != nil {
		t.Fatalf("failed to write garbage request: %v", err)
	}
	bad.Close()

	good, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("net.Dial() error = %v", err)
	}
	defer good.Close()

	request := "GET / HTTP/1.1\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n\r\n"
	if _, err := good.Write([]byte(request)); err != nil {
		t.Fatalf("failed to write handshake request: %v", err)
	}

	select {
	case conn := <-srv.Incoming():
		if conn == nil {
			t.Fatal("Incoming() delivered a nil *Conn")
		}
		defer conn.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for incoming connection after a failed handshake")
	}
}

func TestServerCloseEndsIncoming(t *testing.T) {
	srv, err := Bind("127.0.0.1:0", zerolog.Nop())
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	if err := srv.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case _, ok := <-srv.Incoming():
		if ok {
			t.Fatal("Incoming() delivered a value after Close()")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Incoming() to close")
	}
}
