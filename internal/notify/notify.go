// Package notify delivers best-effort refresh events (balance and session
// changes) to connected clients and downstream caches.
package notify

import (
	"context"
	"time"
)

type EventType string

const (
	BalanceChanged EventType = "balance_changed"
	SessionUpdated EventType = "session_updated"
)

type Event struct {
	Type              EventType `json:"type"`
	UserID            string    `json:"user_id,omitempty"`
	SessionID         string    `json:"session_id,omitempty"`
	Points            *int64    `json:"points,omitempty"`
	ParticipantsCount *int64    `json:"participants_count,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

func BalanceEvent(userID string, points int64, at time.Time) Event {
	return Event{Type: BalanceChanged, UserID: userID, Points: &points, Timestamp: at.UTC()}
}

func SessionEvent(sessionID string, participants int64, at time.Time) Event {
	return Event{Type: SessionUpdated, SessionID: sessionID, ParticipantsCount: &participants, Timestamp: at.UTC()}
}

// Notifier implementations must not block for long and must never report
// failure to the caller; delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

type NotifierFunc func(ctx context.Context, event Event)

func (f NotifierFunc) Notify(ctx context.Context, event Event) {
	f(ctx, event)
}

type multi []Notifier

// Multi fans an event out to every non-nil notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multi) Notify(ctx context.Context, event Event) {
	for _, n := range m {
		n.Notify(ctx, event)
	}
}

// Async detaches delivery from the caller: events are sent on a new goroutine
// with a context that ignores the caller's cancellation.
func Async(ctx context.Context, n Notifier, events ...Event) {
	if n == nil || len(events) == 0 {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		for _, event := range events {
			n.Notify(detached, event)
		}
	}()
}
