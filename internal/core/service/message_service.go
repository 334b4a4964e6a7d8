package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/campus-chat/chat-service/internal/core/domain"
	"github.com/campus-chat/chat-service/internal/core/ports"
)

// MessageService implements the message store use cases and the
// conversation/unread aggregation on top of it.
type MessageService struct {
	repo ports.MessageRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewMessageService(repo ports.MessageRepository, log zerolog.Logger) *MessageService {
	return &MessageService{repo: repo, log: log, now: time.Now}
}

// Append validates and stores a new unread message. Text is stored exactly as
// sent; whitespace-only text is rejected. Dispatching it to live connections
// is the caller's job.
func (s *MessageService) Append(ctx context.Context, in ports.SendMessageInput) (*domain.Message, error) {
	sender := strings.TrimSpace(in.Sender)
	recipient := strings.TrimSpace(in.Recipient)
	text := in.Text

	switch {
	case sender == "":
		return nil, fmt.Errorf("%w: sender is required", domain.ErrValidation)
	case recipient == "":
		return nil, fmt.Errorf("%w: recipient is required", domain.ErrValidation)
	case strings.TrimSpace(text) == "":
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	case utf8.RuneCountInString(text) > domain.MaxMessageLength:
		return nil, fmt.Errorf("%w: text exceeds %d characters", domain.ErrValidation, domain.MaxMessageLength)
	}

	msg := &domain.Message{
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Append(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("sender", sender).Str("recipient", recipient).Msg("failed to append message")
		return nil, fmt.Errorf("append message: %w", err)
	}

	s.log.Debug().Str("message_id", msg.ID).Int64("seq", msg.Seq).Msg("message stored")
	return msg, nil
}

// Conversation returns the full history between a and b; the result is the
// same whichever order the two ids are given in.
func (s *MessageService) Conversation(ctx context.Context, a, b string) ([]*domain.Message, error) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return nil, fmt.Errorf("%w: both user ids are required", domain.ErrValidation)
	}
	msgs, err := s.repo.Conversation(ctx, a, b)
	if err != nil {
		return nil, fmt.Errorf("conversation: %w", err)
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	return msgs, nil
}

// MarkRead flags all unread messages from sender to recipient. Calling it
// again is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, sender, recipient string) (int64, error) {
	sender, recipient = strings.TrimSpace(sender), strings.TrimSpace(recipient)
	if sender == "" || recipient == "" {
		return 0, fmt.Errorf("%w: sender and recipient are required", domain.ErrValidation)
	}
	n, err := s.repo.MarkRead(ctx, sender, recipient)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	if n > 0 {
		s.log.Debug().Str("sender", sender).Str("recipient", recipient).Int64("count", n).Msg("messages marked read")
	}
	return n, nil
}

func (s *MessageService) UnreadCounts(ctx context.Context, recipient string) (map[string]int64, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}
	counts, err := s.repo.UnreadCounts(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}
	if counts == nil {
		counts = map[string]int64{}
	}
	return counts, nil
}

// Summaries returns one row per counterpart userID exchanged messages with,
// most recent conversation first.
func (s *MessageService) Summaries(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}
	msgs, err := s.repo.Touching(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("summaries: %w", err)
	}
	return domain.Summarize(userID, msgs), nil
}
