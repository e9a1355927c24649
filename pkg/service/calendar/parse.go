package calendar

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/emersion/go-ical"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teambition/rrule-go"
)

// recurrence carries the raw recurrence properties of a VEVENT.
type recurrence struct {
	rule    string
	exdates map[string]bool // keys: RFC3339 UTC
}

func parseEvent(comp *ical.Component) (model.CalendarEvent, recurrence) {
	ev := model.CalendarEvent{}
	recur := recurrence{exdates: make(map[string]bool)}

	var uid string
	if prop := comp.Props.Get(ical.PropUID); prop != nil {
		uid = prop.Value
	}
	if prop := comp.Props.Get(ical.PropSummary); prop != nil {
		ev.Title = prop.Value
	}
	if prop := comp.Props.Get(ical.PropDateTimeStart); prop != nil {
		if t, err := parseDateTime(prop); err == nil {
			ev.Start = t
		}
	}
	if prop := comp.Props.Get(ical.PropDateTimeEnd); prop != nil {
		if t, err := parseDateTime(prop); err == nil {
			ev.End = t
		}
	}
	if ev.End.IsZero() {
		ev.End = ev.Start
	}

	ev.Attendees = extractAttendees(comp)
	ev.ID = model.NewCalendarEventID(uid, ev.Title, ev.Start)

	if prop := comp.Props.Get(ical.PropRecurrenceRule); prop != nil {
		recur.rule = prop.Value
	}
	for _, prop := range comp.Props.Values(ical.PropExceptionDates) {
		// EXDATE may hold several comma-separated values
		for _, raw := range strings.Split(prop.Value, ",") {
			p := prop
			p.Value = strings.TrimSpace(raw)
			if t, err := parseDateTime(&p); err == nil {
				recur.exdates[t.UTC().Format(time.RFC3339)] = true
			}
		}
	}

	return ev, recur
}

func parseDateTime(prop *ical.Prop) (time.Time, error) {
	if t, err := prop.DateTime(time.UTC); err == nil {
		return t.UTC(), nil
	}

	// Some feeds emit values the decoder rejects; try common layouts directly
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"20060102",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, prop.Value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, goerr.New("unable to parse datetime value", goerr.V("value", prop.Value))
}

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// extractAttendees returns the unique, lowercased attendee and organizer
// emails, sorted. Values may be "mailto:foo@bar" or raw addresses.
func extractAttendees(comp *ical.Component) []string {
	seen := make(map[string]bool)

	push := func(val string) {
		email := strings.TrimSpace(val)
		if m := strings.ToLower(email); strings.HasPrefix(m, "mailto:") {
			email = email[len("mailto:"):]
		}
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" && emailPattern.MatchString(email) {
			seen[email] = true
		}
	}

	for _, prop := range comp.Props.Values(ical.PropAttendee) {
		push(prop.Value)
	}
	if prop := comp.Props.Get(ical.PropOrganizer); prop != nil {
		push(prop.Value)
	}

	attendees := make([]string, 0, len(seen))
	for email := range seen {
		attendees = append(attendees, email)
	}
	sort.Strings(attendees)
	return attendees
}

// expandRecurrence expands a recurring event into concrete instances inside
// the window. Each instance keeps the base event duration; EXDATE occurrences
// are skipped.
func expandRecurrence(base model.CalendarEvent, recur recurrence, winStart, winEnd time.Time) ([]model.CalendarEvent, error) {
	rule, err := rrule.StrToRRule(recur.rule)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse recurrence rule", goerr.V("rrule", recur.rule))
	}
	rule.DTStart(base.Start)

	duration := base.End.Sub(base.Start)
	if duration < 0 {
		duration = 0
	}

	var instances []model.CalendarEvent
	for _, occ := range rule.Between(winStart, winEnd, true) {
		occ = occ.UTC()
		if recur.exdates[occ.Format(time.RFC3339)] {
			continue
		}

		inst := base
		inst.Start = occ
		inst.End = occ.Add(duration)
		inst.ID = base.ID + "-" + occ.Format(time.RFC3339)
		if inst.Overlaps(winStart, winEnd) {
			instances = append(instances, inst)
		}
	}

	return instances, nil
}
