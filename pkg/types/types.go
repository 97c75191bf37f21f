// Package domain defines the core business types for ticketwatch.
package domain

// Flag is the tri-state availability classification of a monitored page.
// Unknown is distinct from Unavailable: an inconclusive page read must not
// trigger a notification, but it must not suppress a later genuine
// transition into Available either.
type Flag string

// Flag constants.
const (
	FlagAvailable   Flag = "available"
	FlagUnavailable Flag = "unavailable"
	FlagUnknown     Flag = "unknown"
)

// ParseFlag converts a stored string to a Flag. Anything unrecognized,
// including the empty string from older state files, is Unknown.
func ParseFlag(s string) Flag {
	switch Flag(s) {
	case FlagAvailable, FlagUnavailable:
		return Flag(s)
	default:
		return FlagUnknown
	}
}

// SlotRecord is one dated session from the calendar feed.
type SlotRecord struct {
	// ID uniquely identifies the date/session in the feed (e.g. "20240401").
	ID string `json:"id"`
	// Date is the human-readable calendar date (YYYY-MM-DD).
	Date string `json:"date"`
	// Remaining is the seat count left for the session. Never negative.
	Remaining int `json:"remaining"`
	// MinPrice is the lowest listed price, kept as the feed's raw string.
	MinPrice string `json:"min_price"`
	// WindowValid reports whether the booking window was open at fetch time.
	WindowValid bool `json:"window_valid"`
}

// Available reports whether the slot can actually be booked: seats remain
// and the booking window is open.
func (s SlotRecord) Available() bool {
	return s.Remaining > 0 && s.WindowValid
}

// PageSnapshot is the result of classifying a rendered ticket page.
type PageSnapshot struct {
	Flag       Flag
	StatusText string
	PageTitle  string
}
