// Package notify defines the notification interface and implementations
// for availability alerts.
package notify

import (
	"context"
	"time"

	domain "ticketwatch/pkg/types"
)

// Payload carries the content of one availability notification. Exactly one
// of Slots or Page is populated, matching the configured source mode.
type Payload struct {
	// Slots are the slots to announce (calendar mode). On a normal
	// decision these are only the newly available ones.
	Slots []domain.SlotRecord
	// Page is the page classification to announce (page mode).
	Page *domain.PageSnapshot
	// TicketURL is the booking page linked in the message body.
	TicketURL string
	// CheckedAt is when the snapshot was taken.
	CheckedAt time.Time
	// Test marks an operator-forced notification, used for end-to-end
	// delivery verification.
	Test bool
}

// Notifier delivers availability notifications.
type Notifier interface {
	Send(ctx context.Context, p *Payload) error
}
