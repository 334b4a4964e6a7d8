package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/campus-chat/chat-service/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	order     []string
	findErr   error
	upsertErr error
	upserts   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// UpsertLogin mirrors the Mongo repository: lastSeen becomes
// max(in.LastSeen, stored+1ms) in one step, profile fields only when given.
func (r *stubUserRepo) UpsertLogin(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	r.upserts++

	stored, ok := r.byID[u.ID]
	if !ok {
		stored = cloneUser(u)
		r.byID[u.ID] = stored
		r.order = append(r.order, u.ID)
		return cloneUser(stored), nil
	}
	next := stored.LastSeen.Add(time.Millisecond)
	if u.LastSeen.After(next) {
		next = u.LastSeen
	}
	stored.LastSeen = next
	if u.Name != "" {
		stored.Name = u.Name
	}
	if u.Role != "" {
		stored.Role = u.Role
	}
	if u.Email != "" {
		stored.Email = u.Email
	}
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, id := range r.order {
		if u := r.byID[id]; u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubUserRepo) FindFirstByRole(_ context.Context, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if u := r.byID[id]; u.Role == role {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubMessageRepo struct {
	mu        sync.Mutex
	msgs      []*domain.Message
	seq       int64
	appendErr error
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{}
}

func cloneMessage(m *domain.Message) *domain.Message {
	clone := *m
	return &clone
}

func (r *stubMessageRepo) Append(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.seq++
	m.Seq = r.seq
	m.ID = fmt.Sprintf("msg-%d", r.seq)
	r.msgs = append(r.msgs, cloneMessage(m))
	return nil
}

func (r *stubMessageRepo) sorted(keep func(*domain.Message) bool) []*domain.Message {
	var out []*domain.Message
	for _, m := range r.msgs {
		if keep(m) {
			out = append(out, cloneMessage(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (r *stubMessageRepo) Conversation(_ context.Context, a, b string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(m *domain.Message) bool {
		return (m.Sender == a && m.Recipient == b) || (m.Sender == b && m.Recipient == a)
	}), nil
}

func (r *stubMessageRepo) MarkRead(_ context.Context, sender, recipient string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.msgs {
		if m.Sender == sender && m.Recipient == recipient && !m.Read {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (r *stubMessageRepo) UnreadCounts(_ context.Context, recipient string) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64)
	for _, m := range r.msgs {
		if m.Recipient == recipient && !m.Read {
			out[m.Sender]++
		}
	}
	return out, nil
}

func (r *stubMessageRepo) Touching(_ context.Context, userID string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(m *domain.Message) bool { return m.Involves(userID) }), nil
}
