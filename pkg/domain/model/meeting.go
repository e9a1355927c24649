package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Contact status values written to the CRM.
const (
	ContactStatusProspect    = "Prospect"
	ContactStatusNeedsReview = "Needs Review"
)

// InboundMeeting is the payload the sync pipeline consumes: one meeting from an
// external source (Zoom, Outlook, a webhook) with optional attendee and
// transcript data.
type InboundMeeting struct {
	Source            string         `json:"source"`
	ExternalMeetingID string         `json:"externalMeetingId"`
	Title             string         `json:"title,omitempty"`
	StartISO          string         `json:"startISO,omitempty"`
	Attendees         []Attendee     `json:"attendees,omitempty"`
	Transcript        string         `json:"transcript,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	Raw               map[string]any `json:"raw,omitempty"`
}

// Attendee is one participant of an inbound meeting.
type Attendee struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

// Validate checks the fields required to compute a stable idempotency key.
func (m *InboundMeeting) Validate() error {
	if m.Source == "" {
		return goerr.New("meeting source is required")
	}
	if m.ExternalMeetingID == "" {
		return goerr.New("external meeting ID is required")
	}
	return nil
}

// IdempotencyKey is a pure function of (source, externalMeetingId, startISO).
// It is stored on the CRM meeting record to recognize repeat processing.
func (m *InboundMeeting) IdempotencyKey() string {
	return m.Source + ":" + m.ExternalMeetingID + ":" + m.StartISO
}

// StartTime parses StartISO. Returns the zero time if absent or unparseable.
func (m *InboundMeeting) StartTime() time.Time {
	if m.StartISO == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, m.StartISO)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// HasTranscriptData reports whether the payload carries anything worth storing
// as a transcript record.
func (m *InboundMeeting) HasTranscriptData() bool {
	return m.Transcript != "" || m.Notes != "" || len(m.Raw) > 0
}

// ContactInput is the single contact candidate derived from a meeting's
// attendee list.
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Status  string
}

// HasEmail reports whether the candidate can be matched by email.
func (c *ContactInput) HasEmail() bool {
	return c != nil && c.Email != ""
}

// ExtractContact returns the first attendee carrying any identifying field,
// normalized for CRM writes. Returns nil when no attendee is usable.
func (m *InboundMeeting) ExtractContact() *ContactInput {
	for _, att := range m.Attendees {
		if att.Email == "" && att.Phone == "" && att.Name == "" && att.Company == "" {
			continue
		}
		return &ContactInput{
			Name:    strings.TrimSpace(att.Name),
			Email:   strings.TrimSpace(att.Email),
			Phone:   NormalizePhone(att.Phone),
			Company: strings.TrimSpace(att.Company),
			Status:  ContactStatusProspect,
		}
	}
	return nil
}

// NormalizePhone converts a free-form phone number to E.164, assuming US
// numbers for bare 10-digit input. Empty input yields empty output.
func NormalizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return "+1" + d
	case len(d) == 11 && strings.HasPrefix(d, "1"):
		return "+" + d
	case strings.HasPrefix(phone, "+"):
		return phone
	default:
		return "+" + d
	}
}

// SyncResult is the outcome contract of processing one inbound meeting.
type SyncResult struct {
	MeetingRecordID    string `json:"meetingRecordId"`
	ContactRecordID    string `json:"contactRecordId,omitempty"`
	TranscriptRecordID string `json:"transcriptRecordId,omitempty"`
	Created            bool   `json:"created"`
	Linked             bool   `json:"linked"`
}
