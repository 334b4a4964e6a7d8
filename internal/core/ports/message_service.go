package ports

import (
	"context"

	"github.com/campus-chat/chat-service/internal/core/domain"
)

// SendMessageInput is a message as submitted by a client.
type SendMessageInput struct {
	Sender    string
	Recipient string
	Text      string
}

// MessageService exposes the message store and its read-side aggregations.
type MessageService interface {
	Append(ctx context.Context, input SendMessageInput) (*domain.Message, error)
	Conversation(ctx context.Context, a, b string) ([]*domain.Message, error)
	MarkRead(ctx context.Context, sender, recipient string) (int64, error)
	UnreadCounts(ctx context.Context, recipient string) (map[string]int64, error)
	Summaries(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
}
