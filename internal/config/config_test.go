package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketwatch/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalCalendar = `
source:
  calendar_url: https://tickets.example.com/json/calendar.json
  ticket_url: https://tickets.example.com/rsv/
smtp:
  username: watcher@example.com
  password: app-password
  to: me@example.com
`

func TestLoad_MinimalCalendarConfig(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t, minimalCalendar))
	require.NoError(t, err)

	assert.Equal(t, config.ModeCalendar, cfg.Source.Mode)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "Asia/Tokyo", cfg.Source.Timezone)
	assert.Equal(t, "https://tickets.example.com/rsv/", cfg.Source.Referer)

	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 465, cfg.SMTP.Port)
	require.NotNil(t, cfg.SMTP.ImplicitTLS)
	assert.True(t, *cfg.SMTP.ImplicitTLS)
	assert.Equal(t, "watcher@example.com", cfg.SMTP.From)

	assert.Equal(t, "always", cfg.Alerts.PersistPolicy)
	assert.Equal(t, 15*time.Minute, cfg.Schedule.CheckInterval)
	assert.Equal(t, "state.json", cfg.State.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TW_TEST_SMTP_PASSWORD", "secret-from-env")

	cfg, err := config.Load(writeConfig(t, `
source:
  calendar_url: https://tickets.example.com/json/calendar.json
smtp:
  username: watcher@example.com
  password: ${TW_TEST_SMTP_PASSWORD}
  to: me@example.com
`))
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", cfg.SMTP.Password)
}

func TestLoad_MissingSMTPCredentials(t *testing.T) {
	t.Parallel()

	_, err := config.Load(writeConfig(t, `
source:
  calendar_url: https://tickets.example.com/json/calendar.json
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.username is required")
	assert.Contains(t, err.Error(), "smtp.password is required")
	assert.Contains(t, err.Error(), "smtp.to is required")
}

func TestLoad_NoopNotifierNeedsNoCredentials(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t, `
source:
  calendar_url: https://tickets.example.com/json/calendar.json
alerts:
  notifier: noop
`))
	require.NoError(t, err)
	assert.Equal(t, config.NotifierNoop, cfg.Alerts.Notifier)
}

func TestLoad_PageModeRequiresURLAndKeywords(t *testing.T) {
	t.Parallel()

	_, err := config.Load(writeConfig(t, `
source:
  mode: page
alerts:
  notifier: noop
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.page_url is required")
	assert.Contains(t, err.Error(), "source.available_keywords is required")
}

func TestLoad_PageModeValid(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t, `
source:
  mode: page
  page_url: https://tickets.example.com/rsv/
  available_keywords: ["空きあり", "残りわずか"]
  sold_out_keywords: ["完売"]
alerts:
  notifier: noop
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"空きあり", "残りわずか"}, cfg.Source.AvailableKeywords)
	// ticket_url falls back to the monitored page.
	assert.Equal(t, "https://tickets.example.com/rsv/", cfg.Source.TicketURL)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown mode",
			yaml:    "source:\n  mode: rss\nalerts:\n  notifier: noop\n",
			wantErr: "source.mode must be",
		},
		{
			name:    "bad timezone",
			yaml:    "source:\n  calendar_url: https://x\n  timezone: Mars/Olympus\nalerts:\n  notifier: noop\n",
			wantErr: "not a valid IANA zone",
		},
		{
			name:    "bad persist policy",
			yaml:    "source:\n  calendar_url: https://x\nalerts:\n  notifier: noop\n  persist_policy: sometimes\n",
			wantErr: "alerts.persist_policy",
		},
		{
			name:    "unknown notifier",
			yaml:    "source:\n  calendar_url: https://x\nalerts:\n  notifier: pigeon\n",
			wantErr: "alerts.notifier must be",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
