// Package realtime declares the cross-tab presence channel boundary.
//
// The channel itself is an external collaborator: it rides on the same
// durable key-value storage as the session record, one key per channel,
// and delivers messages to subscribers in other tabs of the same origin.
// This package only fixes the message shape, the publisher interface the
// Manager talks to, and the timestamp-expiry membership rule. It ships no
// transport.
package realtime

import (
	"context"
	"time"
)

// Message types published by the auth session manager.
const (
	TypePresenceJoin  = "presence_join"
	TypePresenceLeave = "presence_leave"
)

// DefaultStaleness is the window after which a member without a heartbeat
// is pruned from presence.
const DefaultStaleness = 30 * time.Second

// Message is a single channel delivery.
type Message struct {
	Type      string            `json:"type"`
	Payload   map[string]string `json:"payload,omitempty"`
	SenderID  string            `json:"senderId"`
	Timestamp time.Time         `json:"timestamp"`
}

// Member is one presence entry. Metadata carries the userId/role pair the
// session manager supplies on join.
type Member struct {
	UserID   string            `json:"userId"`
	Metadata map[string]string `json:"metadata,omitempty"`
	LastSeen time.Time         `json:"lastSeen"`
}

// Publisher is the channel-side interface the Manager publishes presence
// metadata through. Implementations are bound to a channel name at
// construction. Publish failures are advisory; callers log and move on.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// ActiveMembers prunes entries whose LastSeen is older than the staleness
// window relative to now. A zero staleness uses DefaultStaleness. Order is
// preserved; the input slice is not modified.
func ActiveMembers(members []Member, now time.Time, staleness time.Duration) []Member {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}

	out := make([]Member, 0, len(members))
	for _, m := range members {
		if now.Sub(m.LastSeen) < staleness {
			out = append(out, m)
		}
	}
	return out
}
