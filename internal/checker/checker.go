// Package checker orchestrates one availability check: load the baseline,
// fetch a snapshot, run the diff, notify if warranted, persist the next
// baseline. Fetch failures abort the run before any state is touched.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ticketwatch/internal/diff"
	"ticketwatch/internal/metrics"
	"ticketwatch/internal/notify"
	"ticketwatch/internal/state"
	domain "ticketwatch/pkg/types"
)

// SlotSource produces a dated-slot snapshot from the calendar feed.
type SlotSource interface {
	Fetch(ctx context.Context) ([]domain.SlotRecord, error)
}

// PageSource produces a single-flag snapshot from the ticket page.
type PageSource interface {
	Fetch(ctx context.Context) (domain.PageSnapshot, error)
}

// PersistPolicy selects when the next baseline is written after a decision
// to notify.
type PersistPolicy string

// Persist policy constants.
const (
	// PersistAlways writes the baseline after any successful fetch, even
	// if the send failed. The next run will not re-notify for the same
	// set; state freshness is ranked above guaranteed delivery.
	PersistAlways PersistPolicy = "always"
	// PersistOnDelivery keeps the previous baseline when a send fails, so
	// the next scheduled run retries the same newly-available set.
	PersistOnDelivery PersistPolicy = "on-delivery"
)

// Checker runs availability checks with injected collaborators. Exactly one
// of the two sources is set, matching the configured mode.
type Checker struct {
	store    *state.Store
	slots    SlotSource
	page     PageSource
	notifier notify.Notifier

	log       *slog.Logger
	now       func() time.Time
	ticketURL string
	persist   PersistPolicy
}

// NewSlotChecker creates a Checker for the calendar-feed source.
func NewSlotChecker(st *state.Store, src SlotSource, n notify.Notifier, opts ...Option) *Checker {
	c := newChecker(st, n, opts)
	c.slots = src
	return c
}

// NewPageChecker creates a Checker for the page-classifier source.
func NewPageChecker(st *state.Store, src PageSource, n notify.Notifier, opts ...Option) *Checker {
	c := newChecker(st, n, opts)
	c.page = src
	return c
}

func newChecker(st *state.Store, n notify.Notifier, opts []Option) *Checker {
	c := &Checker{
		store:    st,
		notifier: n,
		log:      slog.Default(),
		now:      time.Now,
		persist:  PersistAlways,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		c.log = l
	}
}

// WithClock sets the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

// WithTicketURL sets the booking URL included in notifications.
func WithTicketURL(url string) Option {
	return func(c *Checker) {
		c.ticketURL = url
	}
}

// WithPersistPolicy sets when the baseline is written after a failed send.
func WithPersistPolicy(p PersistPolicy) Option {
	return func(c *Checker) {
		c.persist = p
	}
}

// Run executes a single check. The returned error wraps ErrFetch when the
// snapshot could not be obtained (benign: state untouched, nothing to
// report) and ErrNotify when a warranted notification could not be
// delivered.
func (c *Checker) Run(ctx context.Context, force bool) error {
	start := time.Now()
	defer func() {
		metrics.CheckDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.ChecksTotal.Inc()

	log := c.log.With("run_id", uuid.NewString())
	prev := c.store.Load()

	if c.slots != nil {
		return c.runSlots(ctx, log, prev, force)
	}
	return c.runPage(ctx, log, prev, force)
}

func (c *Checker) runSlots(ctx context.Context, log *slog.Logger, prev state.State, force bool) error {
	current, err := c.slots.Fetch(ctx)
	if err != nil {
		metrics.CheckFailuresTotal.WithLabelValues("fetch").Inc()
		log.Error("calendar fetch failed, skipping run", "error", err)
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}

	d := diff.Slots(prev.AvailableIDs, current, force)
	metrics.SlotsAvailable.Set(float64(len(d.NextIDs)))
	log.Info("diff computed",
		"available", len(d.NextIDs),
		"announcing", len(d.Payload),
		"notify", d.Notify,
	)

	next := state.State{
		LastChecked:  c.now().Format(time.RFC3339),
		AvailableIDs: d.NextIDs,
		PageFlag:     prev.PageFlag,
	}

	var notifyErr error
	if d.Notify {
		notifyErr = c.deliver(ctx, log, &notify.Payload{
			Slots:     d.Payload,
			TicketURL: c.ticketURL,
			CheckedAt: c.now(),
			Test:      d.Test,
		})
	}

	return c.finish(log, next, notifyErr)
}

func (c *Checker) runPage(ctx context.Context, log *slog.Logger, prev state.State, force bool) error {
	snap, err := c.page.Fetch(ctx)
	if err != nil {
		metrics.CheckFailuresTotal.WithLabelValues("fetch").Inc()
		log.Error("page fetch failed, skipping run", "error", err)
		return fmt.Errorf("%w: %v", ErrFetch, err)
	}

	d := diff.Page(prev.PageFlag, snap.Flag, force)
	log.Info("diff computed",
		"previous", prev.PageFlag,
		"current", snap.Flag,
		"notify", d.Notify,
	)

	next := state.State{
		LastChecked:  c.now().Format(time.RFC3339),
		AvailableIDs: prev.AvailableIDs,
		PageFlag:     d.Next,
	}

	var notifyErr error
	if d.Notify {
		notifyErr = c.deliver(ctx, log, &notify.Payload{
			Page:      &snap,
			TicketURL: c.ticketURL,
			CheckedAt: c.now(),
			Test:      d.Test,
		})
	}

	return c.finish(log, next, notifyErr)
}

func (c *Checker) deliver(ctx context.Context, log *slog.Logger, p *notify.Payload) error {
	if err := c.notifier.Send(ctx, p); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		log.Error("notification failed", "error", err)
		return fmt.Errorf("%w: %v", ErrNotify, err)
	}
	metrics.NotificationsSentTotal.Inc()
	return nil
}

// finish persists the next baseline according to the persist policy and
// folds any delivery error into the result.
func (c *Checker) finish(log *slog.Logger, next state.State, notifyErr error) error {
	if notifyErr != nil && c.persist == PersistOnDelivery {
		log.Warn("keeping previous baseline so the next run retries delivery")
		return notifyErr
	}

	if err := c.store.Save(next); err != nil {
		metrics.CheckFailuresTotal.WithLabelValues("state").Inc()
		log.Error("state save failed", "error", err)
		if notifyErr != nil {
			return notifyErr
		}
		return fmt.Errorf("saving state: %w", err)
	}

	return notifyErr
}
