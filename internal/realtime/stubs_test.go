package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/campus-chat/chat-service/internal/core/domain"
	"github.com/campus-chat/chat-service/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// fakeConn records every frame it is sent.
type fakeConn struct {
	id     string
	mu     sync.Mutex
	frames []Envelope
	closed bool
	full   bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.full {
		return false
	}
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		panic(fmt.Sprintf("fakeConn: bad frame %q: %v", frame, err))
	}
	c.frames = append(c.frames, env)
	return true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) events(name string) []Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Envelope
	for _, f := range c.frames {
		if f.Event == name {
			out = append(out, f)
		}
	}
	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}

// stubMessageService stores messages in memory.
type stubMessageService struct {
	mu        sync.Mutex
	msgs      []*domain.Message
	appendErr error
}

func (s *stubMessageService) Append(_ context.Context, in ports.SendMessageInput) (*domain.Message, error) {
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	text := in.Text
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seq := int64(len(s.msgs) + 1)
	m := &domain.Message{
		ID:        fmt.Sprintf("m%d", seq),
		Seq:       seq,
		Sender:    in.Sender,
		Recipient: in.Recipient,
		Text:      text,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.msgs = append(s.msgs, m)
	return m, nil
}

func (s *stubMessageService) Conversation(context.Context, string, string) ([]*domain.Message, error) {
	return nil, errors.New("not implemented")
}

func (s *stubMessageService) MarkRead(context.Context, string, string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubMessageService) UnreadCounts(context.Context, string) (map[string]int64, error) {
	return nil, errors.New("not implemented")
}

func (s *stubMessageService) Summaries(context.Context, string) ([]domain.ConversationSummary, error) {
	return nil, errors.New("not implemented")
}

func (s *stubMessageService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

type stubVerifier struct {
	enabled bool
	claims  map[string]*ports.Claims
}

func (v stubVerifier) Enabled() bool { return v.enabled }

func (v stubVerifier) Verify(token string) (*ports.Claims, error) {
	c, ok := v.claims[token]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return c, nil
}

type stubDeduper struct {
	mu       sync.Mutex
	seen     map[string]bool
	released []string
	err      error
}

func (d *stubDeduper) Claim(_ context.Context, sender, id string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	key := sender + ":" + id
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func (d *stubDeduper) Release(_ context.Context, sender, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := sender + ":" + id
	delete(d.seen, key)
	d.released = append(d.released, key)
	return nil
}

func newTestHub(msgs ports.MessageService, opts ...Option) *Hub {
	registry := NewRegistry()
	presence := NewPresence(registry, discardLogger)
	return NewHub(registry, presence, msgs, discardLogger, opts...)
}

func frame(t *testing.T, event string, data any) []byte {
	t.Helper()
	b, err := encodeFrame(event, data)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	return b
}

func decodeData[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode %s data: %v", env.Event, err)
	}
	return v
}

func login(t *testing.T, s *Session, userID string, role domain.Role) {
	t.Helper()
	s.Handle(context.Background(), frame(t, EventLogin, map[string]string{"userId": userID, "userType": string(role)}))
	if s.UserID() != userID {
		t.Fatalf("login %s: session user = %q", userID, s.UserID())
	}
}
