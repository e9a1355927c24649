package interfaces

import (
	"context"

	"github.com/createai-lab/createai/pkg/domain/model"
)

// MeetingCRM is the write surface the sync orchestrator needs from a CRM
// backend. Airtable and Bigin both implement it.
type MeetingCRM interface {
	// SearchContactsByEmail matches contacts by exact case-insensitive email
	// equality. Zero or more matches; the caller uses the first.
	SearchContactsByEmail(ctx context.Context, email string) ([]model.CRMContact, error)

	// CreateOrUpdateContact creates a contact, or patches recordID when given.
	// Returns the contact record ID.
	CreateOrUpdateContact(ctx context.Context, fields model.ContactFields, recordID string) (string, error)

	// CreateMeeting creates a meeting record carrying the idempotency key.
	CreateMeeting(ctx context.Context, fields model.MeetingFields) (string, error)

	// CreateTranscript creates a transcript record. Backends without a
	// transcript table may fold the content into the meeting record and
	// return an empty ID.
	CreateTranscript(ctx context.Context, fields model.TranscriptFields) (string, error)

	// LinkMeetingToContact links an existing meeting record to a contact.
	LinkMeetingToContact(ctx context.Context, meetingRecordID, contactRecordID string) error

	// FindMeetingByIdemKey returns the record ID of a meeting already carrying
	// the given idempotency key, or empty when none exists.
	FindMeetingByIdemKey(ctx context.Context, key string) (string, error)
}

// ConnectionTester reports whether a provider connection is usable with the
// stored credentials. Used by the integrations UI and the health worker.
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

// TokenStore is the single source of truth for one integration's OAuth token
// set. Clients read through Get and write every refreshed token back through
// Persist before retrying, so concurrent requests never race independent
// in-memory copies.
type TokenStore interface {
	Get(ctx context.Context) (*model.OAuthTokens, error)
	Persist(ctx context.Context, tokens *model.OAuthTokens) error
}
