package conn

import (
	"go.uber.org/zap"

	"trivia-lobby-backend/internal/protocol"
)

// Conn is the network-layer handle the game logic may hold. Send is
// fire-and-forget: a slow or dead peer never faults the caller.
type Conn interface {
	Send(msg protocol.ServerMessage)
	Ping()
	Close(reason string)
	RemoteAddr() string
}

// Registry maps player and controller ids to live connections; it is the
// single source of truth for who is reachable. Only the hub loop touches
// it, so no locking.
type Registry struct {
	conns map[string]Conn
	log   *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		conns: make(map[string]Conn),
		log:   log,
	}
}

func (r *Registry) Bind(id string, c Conn) {
	r.conns[id] = c
	r.log.Debug("connection bound", zap.String("id", id))
}

// Unbind is idempotent: heartbeat cleanup and explicit leave can both try
// to remove the same entry.
func (r *Registry) Unbind(id string) {
	if _, ok := r.conns[id]; !ok {
		return
	}
	delete(r.conns, id)
	r.log.Debug("connection unbound", zap.String("id", id))
}

func (r *Registry) Lookup(id string) (Conn, bool) {
	c, ok := r.conns[id]
	return c, ok
}

func (r *Registry) Len() int { return len(r.conns) }

// Broadcast sends the same message to every bound id, silently skipping
// unbound ones.
func (r *Registry) Broadcast(ids []string, msg protocol.ServerMessage) {
	for _, id := range ids {
		if c, ok := r.conns[id]; ok {
			c.Send(msg)
		}
	}
}
