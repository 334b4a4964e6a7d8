package domain

import "sort"

// ConversationSummary is one row of a contact list: the latest message
// exchanged with a counterpart and how many of their messages are unread.
type ConversationSummary struct {
	Counterpart string   `json:"userId"`
	LastMessage *Message `json:"lastMessage"`
	UnreadCount int      `json:"unreadCount"`
}

// Summarize groups the messages touching userID by counterpart. Messages not
// involving userID are ignored, so a counterpart only appears when at least
// one message was exchanged. Unread counts only include messages addressed to
// userID. Rows are ordered most recent first.
func Summarize(userID string, msgs []*Message) []ConversationSummary {
	byCounterpart := make(map[string]*ConversationSummary)
	for _, m := range msgs {
		if m == nil || !m.Involves(userID) {
			continue
		}
		key := m.Counterpart(userID)
		row, ok := byCounterpart[key]
		if !ok {
			row = &ConversationSummary{Counterpart: key, LastMessage: m}
			byCounterpart[key] = row
		} else if row.LastMessage.Before(m) {
			row.LastMessage = m
		}
		if m.Recipient == userID && !m.Read {
			row.UnreadCount++
		}
	}

	out := make([]ConversationSummary, 0, len(byCounterpart))
	for _, row := range byCounterpart {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[j].LastMessage.Before(out[i].LastMessage)
	})
	return out
}
