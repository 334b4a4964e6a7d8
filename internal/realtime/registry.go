package realtime

import (
	"sync"

	"github.com/campus-chat/chat-service/internal/api/metrics"
)

// Conn is the handle of one live realtime connection.
type Conn interface {
	// ID is unique per connection for the lifetime of the process.
	ID() string
	// Send queues a frame without blocking. It reports false when the frame
	// was dropped because the connection is slow or closed.
	Send(frame []byte) bool
	// Close terminates the connection. It is safe to call more than once.
	Close()
}

// Broadcaster delivers a frame to every live connection.
type Broadcaster interface {
	Broadcast(frame []byte)
}

// Registry tracks every open connection, identified or not, so presence
// changes can be announced to all of them.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

func (r *Registry) Add(c Conn) {
	r.mu.Lock()
	r.conns[c.ID()] = c
	n := len(r.conns)
	r.mu.Unlock()
	metrics.Connections.Set(float64(n))
}

func (r *Registry) Remove(c Conn) {
	r.mu.Lock()
	delete(r.conns, c.ID())
	n := len(r.conns)
	r.mu.Unlock()
	metrics.Connections.Set(float64(n))
}

// Broadcast is fire-and-forget: slow connections drop the frame.
func (r *Registry) Broadcast(frame []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.conns {
		if !c.Send(frame) {
			metrics.FramesDroppedTotal.Inc()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll closes every registered connection. Their read loops then
// deregister them.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	conns := make([]Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		c.Close()
	}
}
