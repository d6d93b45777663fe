package notify

import (
	"context"
	"log/slog"
)

// Event types published by the demand-matching subsystem.
const (
	EventWaitlistOffer    = "waitlist.offer"
	EventRecurringBooking = "recurring.booking_created"
)

type Notification struct {
	UserID  string         `json:"user_id"`
	Event   string         `json:"event"`
	Message string         `json:"message"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Notifier delivers user notifications. Delivery is fire-and-forget: callers
// log failures and never roll back the state change that produced the
// notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log. It is the default when no
// broker is configured, and the fallback in tests.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log.With(slog.String("component", "notify.log"))}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	n.log.InfoContext(ctx, "notification",
		slog.String("user_id", msg.UserID),
		slog.String("event", msg.Event),
		slog.String("message", msg.Message),
	)
	return nil
}
