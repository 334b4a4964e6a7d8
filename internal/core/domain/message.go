package domain

import "time"

// MaxMessageLength bounds the text of a single message, in characters.
const MaxMessageLength = 4000

// Message is a direct message between two users. Everything except Read is
// immutable once stored, and Read only ever moves from false to true.
type Message struct {
	ID        string    `json:"id"`
	Seq       int64     `json:"seq"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Before orders messages by creation time, falling back to the store-assigned
// sequence when two messages share a timestamp.
func (m *Message) Before(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.Seq < other.Seq
}

// Counterpart returns the other participant of m as seen by userID.
func (m *Message) Counterpart(userID string) string {
	if m.Sender == userID {
		return m.Recipient
	}
	return m.Sender
}

// Involves reports whether userID sent or received m.
func (m *Message) Involves(userID string) bool {
	return m.Sender == userID || m.Recipient == userID
}
