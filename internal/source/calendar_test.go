package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketwatch/internal/source"
	domain "ticketwatch/pkg/types"
)

const calendarFeed = `{"JOEN_DATE":"20240401","ZANSEKI":2,"YOYAKU_STDATE":"20240301000000","YOYAKU_EDDATE":"20240430235959","MIN_RYOKIN":"5400"}

{"JOEN_DATE":"20240402","ZANSEKI":"0","YOYAKU_STDATE":"20240301000000","YOYAKU_EDDATE":"20240430235959","MIN_RYOKIN":"5400"}
{"JOEN_DATE":"20240403","ZANSEKI":4,"YOYAKU_STDATE":"20240501000000","YOYAKU_EDDATE":"20240531235959","MIN_RYOKIN":5400}
not json at all
{"ZANSEKI":9}
`

func fixedClock(t *testing.T) (func() time.Time, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return func() time.Time {
		return time.Date(2024, 4, 1, 12, 0, 0, 0, loc)
	}, loc
}

func newCalendarSource(t *testing.T, url string) *source.CalendarSource {
	t.Helper()
	now, loc := fixedClock(t)
	return source.NewCalendarSource(source.CalendarConfig{
		URL:       url,
		UserAgent: "ticketwatch-test",
		Referer:   "https://tickets.example.com/rsv/",
		Timeout:   5 * time.Second,
		Location:  loc,
	}, source.WithCalendarClock(now))
}

func TestCalendarFetch_ParsesFeed(t *testing.T) {
	t.Parallel()

	var gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Write([]byte(calendarFeed))
	}))
	defer srv.Close()

	slots, err := newCalendarSource(t, srv.URL).Fetch(context.Background())
	require.NoError(t, err)

	// Malformed and id-less lines are skipped, everything else is kept
	// with its window validity evaluated against the clock.
	require.Len(t, slots, 3)

	assert.Equal(t, domain.SlotRecord{
		ID:          "20240401",
		Date:        "2024-04-01",
		Remaining:   2,
		MinPrice:    "5400",
		WindowValid: true,
	}, slots[0])

	// Quoted seat counts parse the same as bare ones.
	assert.Equal(t, 0, slots[1].Remaining)
	assert.True(t, slots[1].WindowValid)
	assert.False(t, slots[1].Available())

	// Window opens in May, so this one is not yet bookable.
	assert.Equal(t, 4, slots[2].Remaining)
	assert.False(t, slots[2].WindowValid)
	assert.Equal(t, "5400", slots[2].MinPrice)

	assert.Equal(t, "ticketwatch-test", gotUA)
	assert.Equal(t, "https://tickets.example.com/rsv/", gotReferer)
}

func TestCalendarFetch_HTTPErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newCalendarSource(t, srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestCalendarFetch_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newCalendarSource(t, srv.URL).Fetch(context.Background())
	require.Error(t, err)
}

func TestCalendarFetch_EmptyFeed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("\n\n"))
	}))
	defer srv.Close()

	slots, err := newCalendarSource(t, srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, slots)
}
