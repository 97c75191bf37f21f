// Package diff computes notification decisions by comparing the persisted
// availability baseline against a freshly fetched snapshot. It is pure:
// fetching, persistence, and delivery are the caller's concern, which keeps
// the decision rules testable in isolation.
package diff

import (
	"slices"

	domain "ticketwatch/pkg/types"
)

// SlotDecision is the outcome of diffing a dated-slot snapshot.
type SlotDecision struct {
	// Notify reports whether a notification should be sent.
	Notify bool
	// Test marks a force-notify decision, which produces a test-style
	// message even when Payload is empty.
	Test bool
	// Payload holds the slots to announce. On a normal decision this is
	// only the newly available slots, never the full current set, so slots
	// announced on an earlier run are not re-announced.
	Payload []domain.SlotRecord
	// NextIDs is the canonical sorted id set to persist as the next
	// baseline, regardless of whether a notification fires.
	NextIDs []string
}

// Slots decides whether a dated-slot snapshot warrants a notification.
//
// Only slots with remaining seats and an open booking window count as
// available. A slot that disappears (sold out or window closed) drops out
// of NextIDs; if the same id reappears later it is treated as newly
// available again, which is the intended re-alerting behavior.
func Slots(prevIDs []string, current []domain.SlotRecord, force bool) SlotDecision {
	prev := make(map[string]struct{}, len(prevIDs))
	for _, id := range prevIDs {
		prev[id] = struct{}{}
	}

	var available []domain.SlotRecord
	for _, s := range current {
		if s.Available() {
			available = append(available, s)
		}
	}

	nextIDs := make([]string, 0, len(available))
	for _, s := range available {
		nextIDs = append(nextIDs, s.ID)
	}
	slices.Sort(nextIDs)
	nextIDs = slices.Compact(nextIDs)

	var newly []domain.SlotRecord
	for _, s := range available {
		if _, seen := prev[s.ID]; !seen {
			newly = append(newly, s)
		}
	}

	switch {
	case force:
		return SlotDecision{Notify: true, Test: true, Payload: available, NextIDs: nextIDs}
	case len(newly) > 0:
		return SlotDecision{Notify: true, Payload: newly, NextIDs: nextIDs}
	default:
		return SlotDecision{NextIDs: nextIDs}
	}
}

// PageDecision is the outcome of diffing a single-flag page snapshot.
type PageDecision struct {
	Notify bool
	// Test marks a force-notify decision.
	Test bool
	// Next is the flag to persist as the next baseline, including
	// demotions to Unavailable or Unknown.
	Next domain.Flag
}

// Page decides whether a tri-state page classification warrants a
// notification. Transitions into Available from any non-Available state
// notify; Available to Available does not. Unknown never notifies on its
// own and never stands in for Unavailable.
func Page(prev, current domain.Flag, force bool) PageDecision {
	d := PageDecision{Next: current}

	if force {
		d.Notify = true
		d.Test = true
		return d
	}

	if current == domain.FlagAvailable && prev != domain.FlagAvailable {
		d.Notify = true
	}

	return d
}
