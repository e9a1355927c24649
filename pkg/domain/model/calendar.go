package model

import (
	"fmt"
	"hash/fnv"
	"time"
)

// CalendarEvent is a normalized event parsed from an ICS feed. Events are
// ephemeral: they are regenerated on every fetch and never persisted.
type CalendarEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"` // UTC
	End       time.Time `json:"end"`   // UTC
	Attendees []string  `json:"attendees,omitempty"` // lowercased emails, sorted
}

// NewCalendarEventID returns the stable event ID: the ICS UID when present,
// otherwise a reproducible 32-bit hash of summary and start so repeated fetches
// of a UID-less feed still dedupe.
func NewCalendarEventID(uid, summary string, start time.Time) string {
	if uid != "" {
		return uid
	}
	h := fnv.New32a()
	h.Write([]byte(summary))
	h.Write([]byte("|"))
	h.Write([]byte(start.UTC().Format(time.RFC3339)))
	return fmt.Sprintf("%08x", h.Sum32())
}

// Overlaps reports whether the event's [Start, End) interval overlaps the
// given window.
func (e *CalendarEvent) Overlaps(winStart, winEnd time.Time) bool {
	return e.Start.Before(winEnd) && e.End.After(winStart)
}

// DedupeKey identifies an occurrence by title and start time, catching feeds
// that repeat the same event under different UIDs.
func (e *CalendarEvent) DedupeKey() string {
	return e.Title + "|" + e.Start.UTC().Format(time.RFC3339)
}
