package notify

import (
	"fmt"
	"strings"

	domain "ticketwatch/pkg/types"
)

const signature = "--\nSent automatically by ticketwatch."

// buildMessage renders the subject and plain-text body for a payload.
func buildMessage(p *Payload) (subject, body string) {
	if p.Test && !payloadHasAvailability(p) {
		return testSubject, testBody(p)
	}
	if p.Page != nil {
		return availableSubject, pageBody(p)
	}
	return availableSubject, slotsBody(p)
}

const (
	testSubject      = "[ticketwatch] Test notification (no availability)"
	availableSubject = "[ticketwatch] Tickets available!"
)

func payloadHasAvailability(p *Payload) bool {
	if p.Page != nil {
		return p.Page.Flag == domain.FlagAvailable
	}
	return len(p.Slots) > 0
}

func testBody(p *Payload) string {
	var b strings.Builder
	b.WriteString("This is a test notification.\n\n")
	b.WriteString("No availability right now (every date is sold out or outside its booking window).\n\n")
	b.WriteString("Booking page:\n")
	b.WriteString(p.TicketURL + "\n\n")
	fmt.Fprintf(&b, "Checked at: %s\n\n", p.CheckedAt.Format("2006-01-02 15:04:05 MST"))
	b.WriteString(signature)
	return b.String()
}

func slotsBody(p *Payload) string {
	var b strings.Builder
	b.WriteString("Ticket availability detected.\n\n")
	b.WriteString("Available dates:\n")
	for _, s := range p.Slots {
		fmt.Fprintf(&b, "  - %s (remaining: %d", s.Date, s.Remaining)
		if s.MinPrice != "" {
			fmt.Fprintf(&b, ", from ¥%s", s.MinPrice)
		}
		b.WriteString(")\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Checked at: %s\n\n", p.CheckedAt.Format("2006-01-02 15:04:05 MST"))
	b.WriteString("Book now:\n")
	b.WriteString(p.TicketURL + "\n\n")
	b.WriteString(signature)
	return b.String()
}

func pageBody(p *Payload) string {
	var b strings.Builder
	b.WriteString("Ticket availability detected.\n\n")
	if p.Page.PageTitle != "" {
		fmt.Fprintf(&b, "Page: %s\n", p.Page.PageTitle)
	}
	fmt.Fprintf(&b, "Status: %s\n\n", p.Page.StatusText)
	fmt.Fprintf(&b, "Checked at: %s\n\n", p.CheckedAt.Format("2006-01-02 15:04:05 MST"))
	b.WriteString("Book now:\n")
	b.WriteString(p.TicketURL + "\n\n")
	b.WriteString(signature)
	return b.String()
}
