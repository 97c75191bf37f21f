// Package source implements the snapshot sources: the dated-slot calendar
// feed and the single-flag page classifier. Both are configured by
// injection; no URLs, headers, or keyword lists are hardcoded.
package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	domain "ticketwatch/pkg/types"
)

// timestampLayout matches the feed's booking-window timestamps
// (YYYYMMDDHHmmss); values in this layout compare correctly as strings.
const timestampLayout = "20060102150405"

// CalendarConfig configures the calendar feed source.
type CalendarConfig struct {
	URL       string
	UserAgent string
	Referer   string
	Timeout   time.Duration
	// Location is the timezone the feed's booking windows are expressed
	// in. Required.
	Location *time.Location
}

// CalendarSource fetches the line-delimited JSON calendar feed and
// normalizes it into slot records.
type CalendarSource struct {
	client *resty.Client
	cfg    CalendarConfig
	log    *slog.Logger
	now    func() time.Time
}

// NewCalendarSource creates a CalendarSource.
func NewCalendarSource(cfg CalendarConfig, opts ...CalendarOption) *CalendarSource {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Referer", cfg.Referer)

	s := &CalendarSource{
		client: client,
		cfg:    cfg,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CalendarOption configures a CalendarSource.
type CalendarOption func(*CalendarSource)

// WithCalendarLogger sets a custom logger.
func WithCalendarLogger(l *slog.Logger) CalendarOption {
	return func(s *CalendarSource) {
		s.log = l
	}
}

// WithCalendarClock sets the clock used for booking-window checks.
func WithCalendarClock(now func() time.Time) CalendarOption {
	return func(s *CalendarSource) {
		s.now = now
	}
}

// calendarRecord is one line of the feed. Numeric fields appear both
// quoted and bare depending on the record, hence flexString.
type calendarRecord struct {
	JoenDate     string     `json:"JOEN_DATE"`
	Zanseki      flexString `json:"ZANSEKI"`
	YoyakuStart  flexString `json:"YOYAKU_STDATE"`
	YoyakuEnd    flexString `json:"YOYAKU_EDDATE"`
	MinimumPrice flexString `json:"MIN_RYOKIN"`
}

// flexString accepts a JSON string or bare number and keeps the raw text.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(bytes.TrimSpace(b))
	return nil
}

// Fetch retrieves the feed and returns every parseable slot record with its
// booking-window validity evaluated against the current time. Blank and
// malformed lines are skipped; transport and HTTP-status failures are
// returned as errors so the caller can abort the run without touching
// state.
func (s *CalendarSource) Fetch(ctx context.Context) ([]domain.SlotRecord, error) {
	s.log.Debug("fetching calendar feed", "url", s.cfg.URL)

	resp, err := s.client.R().SetContext(ctx).Get(s.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar feed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("calendar feed returned %d", resp.StatusCode())
	}

	nowStamp := s.now().In(s.cfg.Location).Format(timestampLayout)

	var slots []domain.SlotRecord
	scanner := bufio.NewScanner(bytes.NewReader(resp.Body()))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec calendarRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			s.log.Debug("skipping malformed feed line", "error", err)
			continue
		}
		if rec.JoenDate == "" {
			continue
		}

		slots = append(slots, rec.toSlot(nowStamp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading calendar feed: %w", err)
	}

	s.log.Info("calendar feed fetched", "records", len(slots))
	return slots, nil
}

func (r *calendarRecord) toSlot(nowStamp string) domain.SlotRecord {
	remaining, err := strconv.Atoi(strings.TrimSpace(string(r.Zanseki)))
	if err != nil || remaining < 0 {
		remaining = 0
	}

	start := string(r.YoyakuStart)
	end := string(r.YoyakuEnd)

	return domain.SlotRecord{
		ID:          r.JoenDate,
		Date:        formatFeedDate(r.JoenDate),
		Remaining:   remaining,
		MinPrice:    string(r.MinimumPrice),
		WindowValid: start <= nowStamp && nowStamp <= end,
	}
}

func formatFeedDate(joen string) string {
	if len(joen) < 8 {
		return joen
	}
	return joen[:4] + "-" + joen[4:6] + "-" + joen[6:8]
}
