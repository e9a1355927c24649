package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// UserID identifies a user. It is the subject claim of the verified ID token,
// not a locally generated UUID.
type UserID string

func (id UserID) String() string { return string(id) }

// OrganizationID is a UUID-based identifier for Organization
type OrganizationID string

func NewOrganizationID() OrganizationID {
	return OrganizationID(uuid.New().String())
}

func (id OrganizationID) String() string { return string(id) }

// ProjectID is a UUID-based identifier for ContentProject
type ProjectID string

func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

func (id ProjectID) String() string { return string(id) }

// ContentItemID is a UUID-based identifier for ContentItem
type ContentItemID string

func NewContentItemID() ContentItemID {
	return ContentItemID(uuid.New().String())
}

func (id ContentItemID) String() string { return string(id) }

// IntegrationID is a UUID-based identifier for Integration
type IntegrationID string

func NewIntegrationID() IntegrationID {
	return IntegrationID(uuid.New().String())
}

func (id IntegrationID) String() string { return string(id) }

// SnapshotID is a UUID-based identifier for AnalyticsSnapshot
type SnapshotID string

func NewSnapshotID() SnapshotID {
	return SnapshotID(uuid.New().String())
}

func (id SnapshotID) String() string { return string(id) }

// ValidateID checks that a string-typed ID is non-empty.
func ValidateID(name, value string) error {
	if value == "" {
		return goerr.New("ID is required", goerr.V("field", name))
	}
	return nil
}
