package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded notifications. It
// is used for dry runs when no mail transport is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards payloads with a log line.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Send logs and discards the payload.
func (n *NoOpNotifier) Send(_ context.Context, p *Payload) error {
	subject, _ := buildMessage(p)
	n.log.Info("notification discarded (no transport configured)",
		"subject", subject,
		"slots", len(p.Slots),
		"test", p.Test,
	)
	return nil
}
