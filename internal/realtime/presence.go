package realtime

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/campus-chat/chat-service/internal/api/metrics"
	"github.com/campus-chat/chat-service/internal/core/domain"
)

// Entry is a snapshot of one presence table row.
type Entry struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"userType"`
}

type presenceEntry struct {
	role domain.Role
	conn Conn
}

// Presence maps online users to their connection. It holds at most one entry
// per user: a second login for the same id replaces the first (last writer
// wins, no multi-device fan-out). State is process-local and lost on restart.
type Presence struct {
	mu      sync.Mutex
	entries map[string]presenceEntry
	out     Broadcaster
	log     zerolog.Logger
}

// NewPresence creates an empty table announcing changes through out.
func NewPresence(out Broadcaster, log zerolog.Logger) *Presence {
	return &Presence{
		entries: make(map[string]presenceEntry),
		out:     out,
		log:     log,
	}
}

// SetOnline registers conn as userID's connection and announces it to every
// connected party, plus a shopkeeperStatus frame when role is shopkeeper.
func (p *Presence) SetOnline(userID string, role domain.Role, conn Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.entries[userID]; ok && prev.conn.ID() != conn.ID() {
		p.log.Debug().Str("user_id", userID).Str("previous_conn", prev.conn.ID()).Msg("presence entry replaced")
	}
	p.entries[userID] = presenceEntry{role: role, conn: conn}
	p.recordGaugeLocked()
	p.announceLocked(userID, role, true)
}

// SetOffline removes userID's entry, announcing the change when one existed.
func (p *Presence) SetOffline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[userID]
	if !ok {
		return false
	}
	p.removeLocked(userID, e)
	return true
}

// Release is SetOffline guarded by connection identity: a connection that was
// superseded by a newer login must not evict the newer entry when it closes.
func (p *Presence) Release(userID string, conn Conn) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[userID]
	if !ok || e.conn.ID() != conn.ID() {
		return false
	}
	p.removeLocked(userID, e)
	return true
}

func (p *Presence) removeLocked(userID string, e presenceEntry) {
	delete(p.entries, userID)
	p.recordGaugeLocked()
	p.announceLocked(userID, e.role, false)
}

// Lookup returns the connection of userID, if online.
func (p *Presence) Lookup(userID string) (Conn, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[userID]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// ShopkeeperOnline reports whether any shopkeeper is connected.
func (p *Presence) ShopkeeperOnline() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.entries {
		if e.role == domain.RoleShopkeeper {
			return true
		}
	}
	return false
}

// Online lists connected users ordered by id.
func (p *Presence) Online() []Entry {
	p.mu.Lock()
	out := make([]Entry, 0, len(p.entries))
	for id, e := range p.entries {
		out = append(out, Entry{UserID: id, Role: e.role})
	}
	p.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (p *Presence) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Close empties the table without announcing anything; used on shutdown.
func (p *Presence) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = make(map[string]presenceEntry)
	p.recordGaugeLocked()
}

// announceLocked runs under p.mu so announcements for one user leave in the
// same order as the table changes. Broadcast never blocks.
func (p *Presence) announceLocked(userID string, role domain.Role, online bool) {
	if frame, err := encodeFrame(EventUserStatus, UserStatus{UserID: userID, Online: online}); err == nil {
		p.out.Broadcast(frame)
	} else {
		p.log.Error().Err(err).Msg("encode user status")
	}

	if role != domain.RoleShopkeeper {
		return
	}
	if frame, err := encodeFrame(EventShopkeeperStatus, ShopkeeperStatus{Online: online}); err == nil {
		p.out.Broadcast(frame)
	} else {
		p.log.Error().Err(err).Msg("encode shopkeeper status")
	}
}

func (p *Presence) recordGaugeLocked() {
	counts := map[domain.Role]int{domain.RoleStudent: 0, domain.RoleShopkeeper: 0}
	for _, e := range p.entries {
		counts[e.role]++
	}
	for role, n := range counts {
		metrics.OnlineUsers.WithLabelValues(string(role)).Set(float64(n))
	}
}
