package ports

import (
	"context"

	"github.com/campus-chat/chat-service/internal/core/domain"
)

// MessageRepository defines persistence operations for direct messages.
// Each method is a single request against the store; none of them spans a
// multi-statement transaction.
type MessageRepository interface {
	// Append stores m, assigning its ID and Seq.
	Append(ctx context.Context, m *domain.Message) error
	// Conversation returns the messages exchanged between a and b in either
	// direction, ordered by (CreatedAt, Seq) ascending.
	Conversation(ctx context.Context, a, b string) ([]*domain.Message, error)
	// MarkRead flags every unread message from sender to recipient as read
	// and returns how many changed.
	MarkRead(ctx context.Context, sender, recipient string) (int64, error)
	// UnreadCounts maps each sender to the number of unread messages it sent
	// to recipient. Senders with nothing unread are absent.
	UnreadCounts(ctx context.Context, recipient string) (map[string]int64, error)
	// Touching returns every message sent or received by userID ordered by
	// (CreatedAt, Seq) ascending.
	Touching(ctx context.Context, userID string) ([]*domain.Message, error)
}
