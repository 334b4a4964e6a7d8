// Package metrics defines and registers the custom Prometheus metrics of the
// chat service. Collectors are registered with the default registry on
// package initialisation through promauto; HTTP request metrics come from the
// echoprometheus middleware instead.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat"

// ── Message metrics ───────────────────────────────────────────────────────────

// MessagesPersistedTotal counts messages stored through the realtime channel.
var MessagesPersistedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_persisted_total",
		Help:      "Total number of direct messages persisted.",
	},
)

// MessagesFailedTotal counts sendDirectMessage events answered with messageError.
// Label:
//   - reason: "validation", "persistence" or "internal"
var MessagesFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_failed_total",
		Help:      "Total number of direct messages that could not be stored.",
	},
	[]string{"reason"},
)

// MessagesDeliveredTotal counts push attempts to recipients after persistence.
// Label:
//   - result: "live" (recipient connected) or "offline"
var MessagesDeliveredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_delivered_total",
		Help:      "Direct message push attempts, by recipient availability.",
	},
	[]string{"result"},
)

// MessagesDedupTotal counts client message id checks.
// Label:
//   - result: "hit" (resend dropped), "miss" or "error"
var MessagesDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_dedup_total",
		Help:      "Client message id deduplication checks, by result.",
	},
	[]string{"result"},
)

// MessagesMarkedReadTotal counts messages flipped to read.
var MessagesMarkedReadTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_marked_read_total",
		Help:      "Total number of messages marked as read.",
	},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// TypingForwardedTotal counts typing indicators.
// Label:
//   - result: "forwarded" or "offline"
var TypingForwardedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "typing_events_total",
		Help:      "Typing indicator events, by whether the recipient was connected.",
	},
	[]string{"result"},
)

// OnlineUsers tracks the size of the presence table per role.
var OnlineUsers = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "online_users",
		Help:      "Users with a live identified connection, by role.",
	},
	[]string{"role"},
)

// Connections tracks open realtime connections, identified or not.
var Connections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Open realtime connections.",
	},
)

// FramesDroppedTotal counts outbound frames discarded because a connection's
// send queue was full or already closed.
var FramesDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_frames_dropped_total",
		Help:      "Outbound realtime frames dropped.",
	},
)

// ProtocolErrorsTotal counts inbound events rejected before reaching a store.
// Label:
//   - reason: "malformed", "unknown_event", "invalid_state", "invalid_payload",
//     "sender_mismatch", "unauthorized", "panic"
var ProtocolErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_protocol_errors_total",
		Help:      "Inbound realtime events rejected, by reason.",
	},
	[]string{"reason"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts successful REST logins.
// Label:
//   - role: "student" or "shopkeeper"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Successful logins, by role.",
	},
	[]string{"role"},
)
