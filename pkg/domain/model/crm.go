package model

import "time"

// CRMContact is a contact record as seen by a CRM provider. RecordID is the
// provider's identifier (Airtable row ID, Bigin object ID).
type CRMContact struct {
	RecordID string
	Name     string
	Email    string
	Phone    string
	Company  string
	Status   string
}

// ContactFields is the write payload for a CRM contact record. Empty fields
// are omitted from the provider request.
type ContactFields struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Status  string
}

// MeetingFields is the write payload for a CRM meeting record. The idempotency
// key lives on the record so retries can be recognized later.
type MeetingFields struct {
	Name               string
	ExternalMeetingID  string
	Source             string
	IdempotencyKey     string
	MeetingDate        time.Time
	Status             string
	TranscriptRecordID string
	Attendees          []string
	Description        string
}

// TranscriptFields is the write payload for a CRM transcript record.
type TranscriptFields struct {
	Title            string
	Content          string
	MeetingDate      time.Time
	ProcessingStatus string
}
