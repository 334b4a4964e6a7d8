package realtime

import (
	"encoding/json"
	"fmt"
)

// Inbound events.
const (
	EventLogin               = "login"
	EventSendDirectMessage   = "sendDirectMessage"
	EventTyping              = "typing"
	EventLogout              = "logout"
	EventGetShopkeeperStatus = "getShopkeeperStatus"
)

// Outbound events. EventTyping is used in both directions.
const (
	EventDirectMessage    = "directMessage"
	EventUserStatus       = "userStatus"
	EventShopkeeperStatus = "shopkeeperStatus"
	EventMessageError     = "messageError"
	EventError            = "error"
)

// sendFailedMessage is shown to a sender whose message could not be stored.
const sendFailedMessage = "Failed to send message. Please try again later."

// Envelope is the frame exchanged over the realtime channel in both
// directions: {"event": "...", "data": {...}}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type loginPayload struct {
	UserID   string `json:"userId"   validate:"required"`
	UserType string `json:"userType" validate:"required,oneof=student shopkeeper"`
	Token    string `json:"token,omitempty"`
}

type sendDirectMessagePayload struct {
	Text            string `json:"text"      validate:"required"`
	Sender          string `json:"sender"    validate:"required"`
	Recipient       string `json:"recipient" validate:"required"`
	ClientMessageID string `json:"clientMessageId,omitempty" validate:"omitempty,max=128"`
}

// TypingPayload is forwarded verbatim to the recipient.
type TypingPayload struct {
	Sender    string `json:"sender"    validate:"required"`
	Recipient string `json:"recipient" validate:"required"`
	IsTyping  bool   `json:"isTyping"`
}

// UserStatus announces that a user came online or went offline.
type UserStatus struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

// ShopkeeperStatus announces the availability of the shopkeeper.
type ShopkeeperStatus struct {
	Online bool `json:"online"`
}

// MessageError tells a sender its message was not stored.
type MessageError struct {
	Error           string          `json:"error"`
	OriginalMessage json.RawMessage `json:"originalMessage,omitempty"`
}

// ProtocolError rejects an event that never reached the stores.
type ProtocolError struct {
	Error string `json:"error"`
	Event string `json:"event,omitempty"`
}

// encodeFrame marshals an outbound envelope.
func encodeFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return frame, nil
}
