// Package config handles loading and validating the application
// configuration from a YAML file with environment variable substitution.
// Credentials are expected to arrive through the environment (for example
// ${TICKETWATCH_SMTP_PASSWORD} in the YAML).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Source modes.
const (
	ModeCalendar = "calendar"
	ModePage     = "page"
)

// Notifier backends.
const (
	NotifierEmail = "email"
	NotifierNoop  = "noop"
)

// Config is the top-level application configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Server   ServerConfig   `yaml:"server"`
	State    StateConfig    `yaml:"state"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SourceConfig defines where and how availability snapshots are fetched.
type SourceConfig struct {
	Mode        string        `yaml:"mode"` // calendar, page
	CalendarURL string        `yaml:"calendar_url"`
	PageURL     string        `yaml:"page_url"`
	TicketURL   string        `yaml:"ticket_url"` // booking link put in the mail body
	UserAgent   string        `yaml:"user_agent"`
	Referer     string        `yaml:"referer"`
	Timeout     time.Duration `yaml:"timeout"`
	Timezone    string        `yaml:"timezone"` // IANA name for booking-window checks

	// Keyword lists for page mode, checked in order. Injected here so the
	// classifier carries no hardcoded site knowledge.
	AvailableKeywords []string `yaml:"available_keywords"`
	SoldOutKeywords   []string `yaml:"sold_out_keywords"`
}

// SMTPConfig defines the mail transport settings.
type SMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	ImplicitTLS *bool  `yaml:"implicit_tls"` // default true (SMTPS, port 465 style)
}

// AlertsConfig defines notification behavior.
type AlertsConfig struct {
	Notifier string `yaml:"notifier"` // email, noop
	// PersistPolicy is "always" (reference behavior: baseline saved after
	// any successful fetch, a failed send is not retried) or
	// "on-delivery" (baseline kept on a failed send so the next run
	// retries the same payload).
	PersistPolicy string `yaml:"persist_policy"`
}

// ScheduleConfig defines the watch-mode check interval.
type ScheduleConfig struct {
	CheckInterval time.Duration `yaml:"check_interval"`
}

// ServerConfig defines the watch-mode health/metrics listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StateConfig defines where the baseline is persisted.
type StateConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution, applying defaults, and validating.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applySourceDefaults(&cfg.Source)
	applySMTPDefaults(&cfg.SMTP)
	applyAlertsDefaults(&cfg.Alerts)
	applyScheduleDefaults(&cfg.Schedule)
	applyServerDefaults(&cfg.Server)
	applyStateDefaults(&cfg.State)
	applyLoggingDefaults(&cfg.Logging)
}

func applySourceDefaults(s *SourceConfig) {
	if s.Mode == "" {
		s.Mode = ModeCalendar
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.Timezone == "" {
		s.Timezone = "Asia/Tokyo"
	}
	if s.UserAgent == "" {
		s.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	}
	if s.TicketURL == "" {
		s.TicketURL = s.PageURL
	}
	if s.Referer == "" {
		s.Referer = s.TicketURL
	}
}

func applySMTPDefaults(s *SMTPConfig) {
	if s.Host == "" {
		s.Host = "smtp.gmail.com"
	}
	if s.Port == 0 {
		s.Port = 465
	}
	if s.ImplicitTLS == nil {
		v := true
		s.ImplicitTLS = &v
	}
	if s.From == "" {
		s.From = s.Username
	}
}

func applyAlertsDefaults(a *AlertsConfig) {
	if a.Notifier == "" {
		a.Notifier = NotifierEmail
	}
	if a.PersistPolicy == "" {
		a.PersistPolicy = "always"
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.CheckInterval == 0 {
		s.CheckInterval = 15 * time.Minute
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
}

func applyStateDefaults(s *StateConfig) {
	if s.Path == "" {
		s.Path = "state.json"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	switch cfg.Source.Mode {
	case ModeCalendar:
		if cfg.Source.CalendarURL == "" {
			errs = append(errs, fmt.Errorf("source.calendar_url is required in calendar mode"))
		}
	case ModePage:
		if cfg.Source.PageURL == "" {
			errs = append(errs, fmt.Errorf("source.page_url is required in page mode"))
		}
		if len(cfg.Source.AvailableKeywords) == 0 {
			errs = append(errs, fmt.Errorf("source.available_keywords is required in page mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.mode must be %q or %q (got %q)",
			ModeCalendar, ModePage, cfg.Source.Mode))
	}

	if _, err := time.LoadLocation(cfg.Source.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("source.timezone %q is not a valid IANA zone", cfg.Source.Timezone))
	}

	switch cfg.Alerts.Notifier {
	case NotifierEmail:
		if cfg.SMTP.Username == "" {
			errs = append(errs, fmt.Errorf("smtp.username is required when alerts.notifier is email"))
		}
		if cfg.SMTP.Password == "" {
			errs = append(errs, fmt.Errorf("smtp.password is required when alerts.notifier is email"))
		}
		if cfg.SMTP.To == "" {
			errs = append(errs, fmt.Errorf("smtp.to is required when alerts.notifier is email"))
		}
	case NotifierNoop:
		// Nothing to validate; used for dry runs.
	default:
		errs = append(errs, fmt.Errorf("alerts.notifier must be %q or %q (got %q)",
			NotifierEmail, NotifierNoop, cfg.Alerts.Notifier))
	}

	if p := cfg.Alerts.PersistPolicy; p != "always" && p != "on-delivery" {
		errs = append(errs, fmt.Errorf("alerts.persist_policy must be \"always\" or \"on-delivery\" (got %q)", p))
	}

	return errors.Join(errs...)
}
