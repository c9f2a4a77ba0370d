package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/alferrante/tinykind/pkg/logger"
	"github.com/alferrante/tinykind/pkg/telemetry"
)

// ReactionEvent describes a changed reaction worth telling the sender about.
type ReactionEvent struct {
	ToEmail       string
	SenderName    string
	RecipientName string
	Emoji         string
	MessageURL    string
}

// Outcome is the structured, non-throwing result of a delivery attempt.
// Ordinary failures (missing config, transport rejection) are reported here
// with Sent=false and a reason code, never as errors.
type Outcome struct {
	Sent   bool   `json:"sent"`
	Reason string `json:"reason,omitempty"`
}

// Notifier attempts delivery of a reaction notification.
type Notifier interface {
	Notify(ctx context.Context, ev ReactionEvent) Outcome
}

// Dispatch invokes the notifier, converting panics into a not-sent outcome.
// The reaction write already committed by the time this runs; nothing from
// here may surface as an error on that path.
func Dispatch(ctx context.Context, n Notifier, ev ReactionEvent) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("notify_panic", zap.Any("panic", r))
			out = Outcome{Sent: false, Reason: fmt.Sprintf("notifier panic: %v", r)}
		}
		result := "sent"
		if !out.Sent {
			result = "failed"
		}
		telemetry.NotificationOutcomes.WithLabelValues(result).Inc()
	}()
	out = n.Notify(ctx, ev)
	return out
}
