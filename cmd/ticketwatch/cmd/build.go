package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"ticketwatch/internal/checker"
	"ticketwatch/internal/config"
	"ticketwatch/internal/notify"
	"ticketwatch/internal/source"
	"ticketwatch/internal/state"
)

// buildChecker wires the configured source, notifier, and state store into
// a ready-to-run Checker.
func buildChecker(cfg *config.Config, log *slog.Logger) (*checker.Checker, error) {
	statePath := cfg.State.Path
	if override := viper.GetString("state"); override != "" {
		statePath = override
	}
	store := state.NewStore(statePath, state.WithLogger(log))

	var notifier notify.Notifier
	switch cfg.Alerts.Notifier {
	case config.NotifierNoop:
		notifier = notify.NewNoOpNotifier(log)
	default:
		notifier = notify.NewEmailNotifier(notify.SMTPSettings{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			From:        cfg.SMTP.From,
			To:          cfg.SMTP.To,
			ImplicitTLS: *cfg.SMTP.ImplicitTLS,
		}, notify.WithEmailLogger(log))
	}

	opts := []checker.Option{
		checker.WithLogger(log),
		checker.WithTicketURL(cfg.Source.TicketURL),
		checker.WithPersistPolicy(checker.PersistPolicy(cfg.Alerts.PersistPolicy)),
	}

	if cfg.Source.Mode == config.ModePage {
		src := source.NewPageSource(source.PageConfig{
			URL:               cfg.Source.PageURL,
			UserAgent:         cfg.Source.UserAgent,
			Referer:           cfg.Source.Referer,
			Timeout:           cfg.Source.Timeout,
			AvailableKeywords: cfg.Source.AvailableKeywords,
			SoldOutKeywords:   cfg.Source.SoldOutKeywords,
		}, source.WithPageLogger(log))
		return checker.NewPageChecker(store, src, notifier, opts...), nil
	}

	loc, err := time.LoadLocation(cfg.Source.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", cfg.Source.Timezone, err)
	}
	src := source.NewCalendarSource(source.CalendarConfig{
		URL:       cfg.Source.CalendarURL,
		UserAgent: cfg.Source.UserAgent,
		Referer:   cfg.Source.Referer,
		Timeout:   cfg.Source.Timeout,
		Location:  loc,
	}, source.WithCalendarLogger(log))
	return checker.NewSlotChecker(store, src, notifier, opts...), nil
}
