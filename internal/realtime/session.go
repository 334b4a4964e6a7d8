package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/campus-chat/chat-service/internal/api/metrics"
	"github.com/campus-chat/chat-service/internal/core/domain"
	"github.com/campus-chat/chat-service/internal/core/ports"
)

// sessionState is the per-connection state machine:
// anonymous <-> identified -> closed. Only a disconnect closes a session.
type sessionState interface {
	name() string
}

type anonymous struct{}

type identified struct {
	userID string
	role   domain.Role
}

type closed struct{}

func (anonymous) name() string  { return "anonymous" }
func (identified) name() string { return "identified" }
func (closed) name() string     { return "closed" }

// Session is the dispatcher bound to one connection. Its methods are called
// from that connection's read loop only, so every event runs to completion
// before the next one is read.
type Session struct {
	hub   *Hub
	conn  Conn
	state sessionState
	base  zerolog.Logger
	log   zerolog.Logger
}

// UserID returns the identified user, or "" before login and after close.
func (s *Session) UserID() string {
	if st, ok := s.state.(identified); ok {
		return st.userID
	}
	return ""
}

// Handle decodes one inbound frame and runs the matching event.
func (s *Session) Handle(ctx context.Context, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil || env.Event == "" {
		s.reject("malformed", "", "malformed frame")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("event", env.Event).Msg("event handler panicked")
			s.reject("panic", env.Event, "internal error")
		}
	}()

	if _, ok := s.state.(closed); ok {
		s.reject("invalid_state", env.Event, domain.ErrInvalidState.Error())
		return
	}

	switch env.Event {
	case EventLogin:
		s.login(env.Data)
	case EventSendDirectMessage:
		s.sendDirectMessage(ctx, env.Data)
	case EventTyping:
		s.typing(env.Data)
	case EventLogout:
		s.logout()
	case EventGetShopkeeperStatus:
		s.push(EventShopkeeperStatus, ShopkeeperStatus{Online: s.hub.presence.ShopkeeperOnline()})
	default:
		s.reject("unknown_event", env.Event, "unknown event")
	}
}

// Disconnect runs when the transport is gone. It is the implicit disconnect
// event: identified users are released from presence and announced offline.
func (s *Session) Disconnect() {
	s.release()
	s.state = closed{}
	s.hub.registry.Remove(s.conn)
	s.log.Debug().Msg("connection closed")
}

func (s *Session) login(data json.RawMessage) {
	var p loginPayload
	if err := s.decode(EventLogin, data, &p); err != nil {
		return
	}

	role := domain.Role(p.UserType)
	if v := s.hub.tokens; v != nil && v.Enabled() {
		claims, err := v.Verify(p.Token)
		if err != nil || claims.UserID != p.UserID || claims.Role != role {
			s.reject("unauthorized", EventLogin, domain.ErrUnauthorized.Error())
			return
		}
	}

	if st, ok := s.state.(identified); ok && st.userID != p.UserID {
		s.release()
	}

	s.hub.presence.SetOnline(p.UserID, role, s.conn)
	s.state = identified{userID: p.UserID, role: role}
	s.log = s.base.With().Str("user_id", p.UserID).Logger()
	s.log.Info().Str("role", string(role)).Msg("user online")
}

func (s *Session) sendDirectMessage(ctx context.Context, data json.RawMessage) {
	st, ok := s.requireIdentified(EventSendDirectMessage)
	if !ok {
		return
	}

	var p sendDirectMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		s.failSend("validation", data, "malformed message")
		return
	}
	if err := s.hub.validate.Validate(&p); err != nil {
		s.failSend("validation", data, err.Error())
		return
	}
	if p.Sender != st.userID {
		s.reject("sender_mismatch", EventSendDirectMessage, "sender mismatch")
		return
	}

	// A disconnect must not cancel an append that was already issued.
	ctx = context.WithoutCancel(ctx)

	claimed := false
	if s.hub.dedup != nil && p.ClientMessageID != "" {
		first, err := s.hub.dedup.Claim(ctx, p.Sender, p.ClientMessageID)
		switch {
		case err != nil:
			metrics.MessagesDedupTotal.WithLabelValues("error").Inc()
			s.log.Warn().Err(err).Str("client_message_id", p.ClientMessageID).Msg("dedup check failed, processing anyway")
		case !first:
			metrics.MessagesDedupTotal.WithLabelValues("hit").Inc()
			s.log.Debug().Str("client_message_id", p.ClientMessageID).Msg("duplicate message skipped")
			return
		default:
			metrics.MessagesDedupTotal.WithLabelValues("miss").Inc()
			claimed = true
		}
	}

	msg, err := s.hub.messages.Append(ctx, ports.SendMessageInput{
		Sender:    p.Sender,
		Recipient: p.Recipient,
		Text:      p.Text,
	})
	if err != nil {
		if claimed {
			if rerr := s.hub.dedup.Release(ctx, p.Sender, p.ClientMessageID); rerr != nil {
				s.log.Warn().Err(rerr).Msg("failed to release dedup key")
			}
		}
		switch {
		case errors.Is(err, domain.ErrValidation):
			s.failSend("validation", data, err.Error())
		case errors.Is(err, domain.ErrPersistenceUnavailable):
			s.log.Error().Err(err).Msg("message store unavailable")
			s.failSend("persistence", data, sendFailedMessage)
		default:
			s.log.Error().Err(err).Msg("failed to store message")
			s.failSend("internal", data, sendFailedMessage)
		}
		return
	}
	metrics.MessagesPersistedTotal.Inc()

	frame, err := encodeFrame(EventDirectMessage, msg)
	if err != nil {
		s.log.Error().Err(err).Msg("encode direct message")
		return
	}

	if rc, ok := s.hub.presence.Lookup(msg.Recipient); ok && rc.ID() != s.conn.ID() {
		metrics.MessagesDeliveredTotal.WithLabelValues("live").Inc()
		if !rc.Send(frame) {
			metrics.FramesDroppedTotal.Inc()
		}
	} else if !ok {
		metrics.MessagesDeliveredTotal.WithLabelValues("offline").Inc()
	}

	// Echo to the sender as delivery confirmation.
	if !s.conn.Send(frame) {
		metrics.FramesDroppedTotal.Inc()
	}
}

func (s *Session) typing(data json.RawMessage) {
	st, ok := s.requireIdentified(EventTyping)
	if !ok {
		return
	}

	var p TypingPayload
	if err := s.decode(EventTyping, data, &p); err != nil {
		return
	}
	if p.Sender != st.userID {
		s.reject("sender_mismatch", EventTyping, "sender mismatch")
		return
	}

	rc, ok := s.hub.presence.Lookup(p.Recipient)
	if !ok {
		metrics.TypingForwardedTotal.WithLabelValues("offline").Inc()
		return
	}
	frame, err := encodeFrame(EventTyping, p)
	if err != nil {
		s.log.Error().Err(err).Msg("encode typing")
		return
	}
	metrics.TypingForwardedTotal.WithLabelValues("forwarded").Inc()
	if !rc.Send(frame) {
		metrics.FramesDroppedTotal.Inc()
	}
}

// logout signs the user out and returns the session to anonymous. The socket
// stays usable: the client may log in again on it.
func (s *Session) logout() {
	if _, ok := s.requireIdentified(EventLogout); !ok {
		return
	}
	s.release()
	s.state = anonymous{}
	s.log.Info().Msg("user logged out")
	s.log = s.base
}

func (s *Session) release() {
	st, ok := s.state.(identified)
	if !ok {
		return
	}
	if s.hub.presence.Release(st.userID, s.conn) {
		s.log.Info().Msg("user offline")
	}
}

func (s *Session) requireIdentified(event string) (identified, bool) {
	st, ok := s.state.(identified)
	if !ok {
		s.reject("invalid_state", event, fmt.Sprintf("%s: login required", domain.ErrInvalidState))
	}
	return st, ok
}

// decode unmarshals and validates a payload, rejecting the event on failure.
func (s *Session) decode(event string, data json.RawMessage, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		s.reject("invalid_payload", event, "malformed payload")
		return err
	}
	if err := s.hub.validate.Validate(dst); err != nil {
		s.reject("invalid_payload", event, err.Error())
		return err
	}
	return nil
}

func (s *Session) failSend(reason string, original json.RawMessage, msg string) {
	metrics.MessagesFailedTotal.WithLabelValues(reason).Inc()
	s.push(EventMessageError, MessageError{Error: msg, OriginalMessage: original})
}

func (s *Session) reject(reason, event, msg string) {
	metrics.ProtocolErrorsTotal.WithLabelValues(reason).Inc()
	s.log.Debug().Str("event", event).Str("reason", reason).Str("state", s.state.name()).Msg("event rejected")
	s.push(EventError, ProtocolError{Error: msg, Event: event})
}

func (s *Session) push(event string, data any) {
	frame, err := encodeFrame(event, data)
	if err != nil {
		s.log.Error().Err(err).Str("event", event).Msg("encode frame")
		return
	}
	if !s.conn.Send(frame) {
		metrics.FramesDroppedTotal.Inc()
	}
}
