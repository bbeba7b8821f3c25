// Package registry tracks the set of live WebSocket connections accepted
// by a server, and provides a broadcast primitive over them.
package registry

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/undertow-ws/undertow/pkg/metrics"
	"github.com/undertow-ws/undertow/pkg/websocket"
)

// Connection is the minimal surface the registry depends on, so that this
// package never imports the concrete connection type: anything with a
// stable ID, a closed flag, and a way to send a message can be tracked.
type Connection interface {
	SendMessage(websocket.Message) error
	IsClosed() bool
	ID() string
}

// Registry holds shared handles to live connections, serialized by a
// single lock. Membership is append-only during a connection's life;
// closed connections are removed only by [Registry.CleanupClosed].
type Registry struct {
	mu     sync.Mutex
	conns  []Connection
	logger zerolog.Logger
}

// New creates an empty [Registry].
func New(logger zerolog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Add registers conn as a live connection.
func (r *Registry) Add(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns = append(r.conns, conn)
}

// Len returns the number of connections currently tracked, including any
// that are closed but not yet pruned by [Registry.CleanupClosed].
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}

// Broadcast sends msg to every open connection currently registered;
// connections already marked closed are skipped. The registry's lock is
// held only long enough to snapshot the member list; the sends happen
// unlocked and one after another, so a slow or blocked peer delays the
// rest of the broadcast but never a concurrent [Registry.Add]/
// [Registry.CleanupClosed] call. A send failure to one recipient is
// logged and does not abort the broadcast to the others.
func (r *Registry) Broadcast(msg websocket.Message) {
	r.mu.Lock()
	snapshot := make([]Connection, len(r.conns))
	copy(snapshot, r.conns)
	r.mu.Unlock()

	recipients, failures := 0, 0
	for _, conn := range snapshot {
		if conn.IsClosed() {
			continue
		}
		recipients++
		if err := conn.SendMessage(msg); err != nil {
			failures++
			r.logger.Warn().Err(err).Str("conn_id", conn.ID()).Msg("failed to send broadcast message")
		}
	}

	metrics.RecordBroadcast(r.logger, time.Now(), recipients, failures)
}

// CleanupClosed removes every closed connection from the registry.
func (r *Registry) CleanupClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.conns[:0]
	for _, conn := range r.conns {
		if !conn.IsClosed() {
			live = append(live, conn)
		}
	}
	r.conns = live
}
