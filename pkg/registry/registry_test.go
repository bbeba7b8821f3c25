package registry_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/undertow-ws/undertow/pkg/registry"
	"github.com/undertow-ws/undertow/pkg/websocket"
)

type fakeConn struct {
	id       string
	closed   bool
	failNext bool

	mu   sync.Mutex
	sent []websocket.Message
}

func (f *fakeConn) SendMessage(m websocket.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeConn) IsClosed() bool { return f.closed }
func (f *fakeConn) ID() string     { return f.id }

func (f *fakeConn) messages() []websocket.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]websocket.Message, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestBroadcastCoversEveryLiveConnection(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	r := registry.New(zerolog.Nop())
	a := &fakeConn{id: "a"}
	b := &fakeConn{id: "b"}
	closedConn := &fakeConn{id: "c", closed: true}

	r.Add(a)
	r.Add(b)
	r.Add(closedConn)

	msg := websocket.NewTextMessage("hi")
	r.Broadcast(msg)

	for _, c := range []*fakeConn{a, b} {
		got := c.messages()
		if len(got) != 1 || got[0] != msg {
			t.Errorf("connection %q received %v, want [%v]", c.id, got, msg)
		}
	}
	if len(closedConn.messages()) != 0 {
		t.Errorf("closed connection received a message")
	}
}

func TestBroadcastSwallowsPerRecipientErrors(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	r := registry.New(zerolog.Nop())
	ok := &fakeConn{id: "ok"}
	failing := &fakeConn{id: "failing", failNext: true}
	r.Add(ok)
	r.Add(failing)

	msg := websocket.NewTextMessage("hi")
	r.Broadcast(msg) // Must not panic despite failing's error.

	if len(ok.messages()) != 1 {
		t.Errorf("ok connection received %v, want 1 message", ok.messages())
	}
}

func TestCleanupClosedRemovesOnlyClosedConnections(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	r := registry.New(zerolog.Nop())
	live := &fakeConn{id: "live"}
	dead := &fakeConn{id: "dead", closed: true}
	r.Add(live)
	r.Add(dead)

	r.CleanupClosed()

	if got := r.Len(); got != 1 {
		t.Errorf("Len() after CleanupClosed() = %d, want 1", got)
	}
}

func TestAddAppendsWithoutDuplicating(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	r := registry.New(zerolog.Nop())
	r.Add(&fakeConn{id: "one"})
	r.Add(&fakeConn{id: "two"})

	if got := r.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}
