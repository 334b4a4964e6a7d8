package realtime

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campus-chat/chat-service/internal/core/ports"
	"github.com/campus-chat/chat-service/internal/pkg/validation"
)

// Deduper recognises resent client message ids. Implemented by the Redis
// DedupChecker.
type Deduper interface {
	Claim(ctx context.Context, sender, clientMessageID string) (bool, error)
	Release(ctx context.Context, sender, clientMessageID string) error
}

// Hub is the realtime dispatcher: it owns the connection registry and the
// presence table and turns inbound events into store calls and pushes.
type Hub struct {
	registry *Registry
	presence *Presence
	messages ports.MessageService
	tokens   ports.TokenVerifier
	dedup    Deduper
	validate *validation.Validator
	log      zerolog.Logger
}

// Option customises a Hub.
type Option func(*Hub)

// WithTokens requires a valid session token on login when the verifier is
// enabled.
func WithTokens(v ports.TokenVerifier) Option {
	return func(h *Hub) { h.tokens = v }
}

// WithDeduper drops resends of a clientMessageId already stored.
func WithDeduper(d Deduper) Option {
	return func(h *Hub) { h.dedup = d }
}

// NewHub wires a dispatcher around an existing registry and presence table.
func NewHub(registry *Registry, presence *Presence, messages ports.MessageService, log zerolog.Logger, opts ...Option) *Hub {
	h := &Hub{
		registry: registry,
		presence: presence,
		messages: messages,
		validate: validation.New(),
		log:      log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Presence exposes the presence table for read-only REST endpoints.
func (h *Hub) Presence() *Presence {
	return h.presence
}

// Connect registers a freshly opened connection and returns its session in
// the anonymous state.
func (h *Hub) Connect(conn Conn) *Session {
	h.registry.Add(conn)
	h.log.Debug().Str("conn_id", conn.ID()).Msg("connection opened")
	log := h.log.With().Str("conn_id", conn.ID()).Logger()
	return &Session{
		hub:   h,
		conn:  conn,
		state: anonymous{},
		base:  log,
		log:   log,
	}
}

// Shutdown closes every connection and clears the presence table.
func (h *Hub) Shutdown() {
	h.registry.CloseAll()
	h.presence.Close()
}
