package calendar_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/createai-lab/createai/pkg/service/calendar"
	"github.com/m-mizutani/gt"
)

func serveICS(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func icsEvent(uid, summary string, start time.Time, extra string) string {
	return fmt.Sprintf(`BEGIN:VEVENT
UID:%s
SUMMARY:%s
DTSTART:%s
DTEND:%s
%sEND:VEVENT
`, uid, summary,
		start.UTC().Format("20060102T150405Z"),
		start.Add(30*time.Minute).UTC().Format("20060102T150405Z"),
		extra)
}

func wrapCalendar(events ...string) string {
	return "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" +
		strings.ReplaceAll(strings.Join(events, ""), "\n", "\r\n") +
		"END:VCALENDAR\r\n"
}

func TestFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns events inside window newest first", func(t *testing.T) {
		recent := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Second)
		older := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
		ancient := time.Now().UTC().AddDate(0, 0, -90)

		srv := serveICS(t, wrapCalendar(
			icsEvent("uid-older", "Weekly Sync", older, ""),
			icsEvent("uid-recent", "Client Call", recent, "ATTENDEE:mailto:Jane.Doe@Example.com\nORGANIZER:mailto:host@example.com\n"),
			icsEvent("uid-ancient", "Last Quarter Review", ancient, ""),
		))

		events, err := calendar.New().Fetch(ctx, srv.URL, 60)
		gt.NoError(t, err).Required()

		gt.Array(t, events).Length(2)
		gt.Value(t, events[0].ID).Equal("uid-recent")
		gt.Value(t, events[1].ID).Equal("uid-older")
		gt.Value(t, events[0].Attendees).Equal([]string{"host@example.com", "jane.doe@example.com"})
	})

	t.Run("expands recurring events within window", func(t *testing.T) {
		// Base event 10 days ago, repeating daily for 5 occurrences
		base := time.Now().UTC().Add(-10 * 24 * time.Hour).Truncate(time.Second)
		srv := serveICS(t, wrapCalendar(
			icsEvent("uid-recur", "Standup", base, "RRULE:FREQ=DAILY;COUNT=5\n"),
		))

		events, err := calendar.New().Fetch(ctx, srv.URL, 60)
		gt.NoError(t, err).Required()

		gt.Array(t, events).Length(5)
		for _, ev := range events {
			gt.Value(t, ev.Title).Equal("Standup")
			gt.String(t, ev.ID).Contains("uid-recur-")
			gt.Value(t, ev.End.Sub(ev.Start)).Equal(30 * time.Minute)
		}
		gt.Bool(t, events[0].Start.After(events[1].Start)).True()
	})

	t.Run("honors EXDATE", func(t *testing.T) {
		base := time.Now().UTC().Add(-5 * 24 * time.Hour).Truncate(time.Second)
		exdate := base.Add(24 * time.Hour)
		srv := serveICS(t, wrapCalendar(
			icsEvent("uid-ex", "Standup", base,
				"RRULE:FREQ=DAILY;COUNT=3\nEXDATE:"+exdate.Format("20060102T150405Z")+"\n"),
		))

		events, err := calendar.New().Fetch(ctx, srv.URL, 60)
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(2)
		for _, ev := range events {
			gt.Bool(t, ev.Start.Equal(exdate)).False()
		}
	})

	t.Run("dedupes by title and start", func(t *testing.T) {
		start := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
		srv := serveICS(t, wrapCalendar(
			icsEvent("uid-a", "Duplicated", start, ""),
			icsEvent("uid-b", "Duplicated", start, ""),
		))

		events, err := calendar.New().Fetch(ctx, srv.URL, 60)
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(1)
	})

	t.Run("rejects HTML response", func(t *testing.T) {
		srv := serveICS(t, "<!DOCTYPE html><html><body>login</body></html>")

		_, err := calendar.New().Fetch(ctx, srv.URL, 60)
		gt.Error(t, err)
	})

	t.Run("fails on non-OK status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		t.Cleanup(srv.Close)

		_, err := calendar.New().Fetch(ctx, srv.URL, 60)
		gt.Error(t, err)
	})

	t.Run("fails on empty URL", func(t *testing.T) {
		_, err := calendar.New().Fetch(ctx, "", 60)
		gt.Error(t, err)
	})
}
