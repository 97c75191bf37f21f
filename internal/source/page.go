package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	domain "ticketwatch/pkg/types"
)

// PageConfig configures the page classifier source. The keyword lists are
// ordered: the first hit wins within a list, and available keywords are
// checked before sold-out keywords.
type PageConfig struct {
	URL               string
	UserAgent         string
	Referer           string
	Timeout           time.Duration
	AvailableKeywords []string
	SoldOutKeywords   []string
}

// PageSource fetches the ticket page and classifies it into a tri-state
// availability flag.
type PageSource struct {
	client *resty.Client
	cfg    PageConfig
	log    *slog.Logger
}

// NewPageSource creates a PageSource.
func NewPageSource(cfg PageConfig, opts ...PageOption) *PageSource {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Referer", cfg.Referer)

	s := &PageSource{
		client: client,
		cfg:    cfg,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PageOption configures a PageSource.
type PageOption func(*PageSource)

// WithPageLogger sets a custom logger.
func WithPageLogger(l *slog.Logger) PageOption {
	return func(s *PageSource) {
		s.log = l
	}
}

// Fetch retrieves and classifies the page. Transport, HTTP-status, and
// parse failures are returned as errors; an inconclusive classification is
// not an error but an Unknown snapshot.
func (s *PageSource) Fetch(ctx context.Context) (domain.PageSnapshot, error) {
	s.log.Debug("fetching ticket page", "url", s.cfg.URL)

	resp, err := s.client.R().SetContext(ctx).Get(s.cfg.URL)
	if err != nil {
		return domain.PageSnapshot{}, fmt.Errorf("fetching ticket page: %w", err)
	}
	if resp.IsError() {
		return domain.PageSnapshot{}, fmt.Errorf("ticket page returned %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return domain.PageSnapshot{}, fmt.Errorf("parsing ticket page: %w", err)
	}

	snap := s.classify(doc)
	s.log.Info("ticket page classified",
		"flag", snap.Flag,
		"status", snap.StatusText,
	)
	return snap, nil
}

func (s *PageSource) classify(doc *goquery.Document) domain.PageSnapshot {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	body := doc.Find("body").Text()

	snap := domain.PageSnapshot{PageTitle: title}

	for _, kw := range s.cfg.AvailableKeywords {
		if strings.Contains(body, kw) {
			snap.Flag = domain.FlagAvailable
			snap.StatusText = fmt.Sprintf("matched availability keyword %q", kw)
			return snap
		}
	}
	for _, kw := range s.cfg.SoldOutKeywords {
		if strings.Contains(body, kw) {
			snap.Flag = domain.FlagUnavailable
			snap.StatusText = fmt.Sprintf("matched sold-out keyword %q", kw)
			return snap
		}
	}

	snap.Flag = domain.FlagUnknown
	snap.StatusText = "no availability keyword matched"
	return snap
}
