package calendar

import (
	"context"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/utils/logging"
	"github.com/createai-lab/createai/pkg/utils/safe"
	"github.com/emersion/go-ical"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultDaysBack is the lookback window applied when the caller passes zero.
const DefaultDaysBack = 60

type Client struct {
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads a public ICS feed and returns normalized events within the
// window [now-daysBack, now+1d] in UTC, newest first. Recurring events are
// expanded inside the window, and duplicates (same ID, or same title and
// start) are dropped.
func (c *Client) Fetch(ctx context.Context, feedURL string, daysBack int) ([]model.CalendarEvent, error) {
	if feedURL == "" {
		return nil, goerr.New("calendar feed URL is not configured")
	}
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}

	now := time.Now().UTC()
	winStart := now.AddDate(0, 0, -daysBack)
	winEnd := now.Add(24 * time.Hour)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create ICS request", goerr.V("url", feedURL))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "ICS fetch failed", goerr.V("url", feedURL))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("ICS fetch returned non-OK status",
			goerr.V("url", feedURL), goerr.V("status", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read ICS response")
	}

	if err := validateFormat(string(body)); err != nil {
		return nil, err
	}

	events, rawCount, err := c.parseFeed(ctx, string(body), winStart, winEnd)
	if err != nil {
		return nil, err
	}

	// Newest first
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.After(events[j].Start)
	})

	logging.From(ctx).Debug("fetched calendar events",
		"raw", rawCount, "returned", len(events),
		"winStart", winStart, "winEnd", winEnd)

	return events, nil
}

func (c *Client) parseFeed(ctx context.Context, feed string, winStart, winEnd time.Time) ([]model.CalendarEvent, int, error) {
	decoder := ical.NewDecoder(strings.NewReader(feed))

	events := []model.CalendarEvent{}
	seenIDs := make(map[string]bool)
	seenKeys := make(map[string]bool)
	rawCount := 0

	include := func(ev model.CalendarEvent) {
		if seenIDs[ev.ID] || seenKeys[ev.DedupeKey()] {
			return
		}
		seenIDs[ev.ID] = true
		seenKeys[ev.DedupeKey()] = true
		events = append(events, ev)
	}

	for {
		cal, err := decoder.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to decode calendar")
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			rawCount++

			ev, recur := parseEvent(comp)
			if ev.Start.IsZero() {
				continue
			}

			if recur.rule != "" {
				instances, err := expandRecurrence(ev, recur, winStart, winEnd)
				if err != nil {
					logging.From(ctx).Warn("skipping unparsable recurrence rule",
						"title", ev.Title, "rrule", recur.rule, "error", err)
					continue
				}
				for _, inst := range instances {
					include(inst)
				}
				continue
			}

			if ev.Overlaps(winStart, winEnd) {
				include(ev)
			}
		}
	}

	return events, rawCount, nil
}

// validateFormat rejects responses that are clearly not iCalendar, most
// commonly an HTML login page from a feed that requires authentication.
func validateFormat(body string) error {
	trimmed := strings.TrimSpace(body)
	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, "<!DOCTYPE") || strings.HasPrefix(upper, "<HTML") {
		return goerr.New("received HTML instead of iCalendar data, check if the URL requires authentication")
	}
	if !strings.HasPrefix(trimmed, "BEGIN:VCALENDAR") {
		preview := trimmed
		if len(preview) > 100 {
			preview = preview[:100]
		}
		return goerr.New("invalid iCalendar format", goerr.V("preview", preview))
	}
	return nil
}
