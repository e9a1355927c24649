package interfaces

import (
	"context"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Get retrieves a user by ID
	Get(ctx context.Context, id types.UserID) (*model.User, error)

	// Upsert creates or updates a user keyed by ID
	Upsert(ctx context.Context, user *model.User) (*model.User, error)
}

// OrganizationRepository defines the interface for organization persistence
type OrganizationRepository interface {
	// Create creates an organization and an owner membership for ownerID
	Create(ctx context.Context, org *model.Organization, ownerID types.UserID) (*model.Organization, error)

	// Get retrieves an organization by ID
	Get(ctx context.Context, id types.OrganizationID) (*model.Organization, error)

	// ListByUser retrieves the memberships of a user together with their organizations
	ListByUser(ctx context.Context, userID types.UserID) ([]*model.Membership, []*model.Organization, error)
}

// ProjectRepository defines the interface for content project persistence
type ProjectRepository interface {
	Create(ctx context.Context, project *model.ContentProject) (*model.ContentProject, error)
	Get(ctx context.Context, id types.ProjectID) (*model.ContentProject, error)

	// List retrieves projects of an organization, optionally filtered by type
	List(ctx context.Context, orgID types.OrganizationID, contentType types.ContentType) ([]*model.ContentProject, error)

	Update(ctx context.Context, project *model.ContentProject) (*model.ContentProject, error)
}

// ContentItemRepository defines the interface for content item persistence
type ContentItemRepository interface {
	Create(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error)
	Get(ctx context.Context, id types.ContentItemID) (*model.ContentItem, error)
	ListByProject(ctx context.Context, projectID types.ProjectID) ([]*model.ContentItem, error)
	Update(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error)
}

// IntegrationRepository defines the interface for integration persistence.
// Each (user, provider) pair holds at most one integration; Upsert keeps that
// invariant.
type IntegrationRepository interface {
	Upsert(ctx context.Context, integration *model.Integration) (*model.Integration, error)
	ListByUser(ctx context.Context, userID types.UserID) ([]*model.Integration, error)

	// ListAll returns every stored integration across all users. Used by the
	// background health worker.
	ListAll(ctx context.Context) ([]*model.Integration, error)
	GetByProvider(ctx context.Context, userID types.UserID, provider types.IntegrationProvider) (*model.Integration, error)
	Delete(ctx context.Context, userID types.UserID, provider types.IntegrationProvider) error
}

// AnalyticsRepository defines the interface for analytics snapshot persistence
type AnalyticsRepository interface {
	Create(ctx context.Context, snapshot *model.AnalyticsSnapshot) (*model.AnalyticsSnapshot, error)

	// List retrieves snapshots of an organization, optionally filtered by source
	List(ctx context.Context, orgID types.OrganizationID, source string) ([]*model.AnalyticsSnapshot, error)
}

// DismissedMeetingRepository defines the interface for dismissed meeting persistence
type DismissedMeetingRepository interface {
	// Dismiss records that a user hid a meeting. Dismissing twice is a no-op.
	Dismiss(ctx context.Context, userID types.UserID, meetingID string) error

	// List returns dismissed meeting IDs of a user
	List(ctx context.Context, userID types.UserID) ([]*model.DismissedMeeting, error)
}
