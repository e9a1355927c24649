package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = goerr.New("not found")

type Firestore struct {
	client      *firestore.Client
	user        *userRepository
	org         *organizationRepository
	project     *projectRepository
	contentItem *contentItemRepository
	integration *integrationRepository
	analytics   *analyticsRepository
	dismissed   *dismissedMeetingRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.user.collectionPrefix = prefix
		f.org.collectionPrefix = prefix
		f.project.collectionPrefix = prefix
		f.contentItem.collectionPrefix = prefix
		f.integration.collectionPrefix = prefix
		f.analytics.collectionPrefix = prefix
		f.dismissed.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client:      client,
		user:        newUserRepository(client),
		org:         newOrganizationRepository(client),
		project:     newProjectRepository(client),
		contentItem: newContentItemRepository(client),
		integration: newIntegrationRepository(client),
		analytics:   newAnalyticsRepository(client),
		dismissed:   newDismissedMeetingRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Organization() interfaces.OrganizationRepository {
	return f.org
}

func (f *Firestore) Project() interfaces.ProjectRepository {
	return f.project
}

func (f *Firestore) ContentItem() interfaces.ContentItemRepository {
	return f.contentItem
}

func (f *Firestore) Integration() interfaces.IntegrationRepository {
	return f.integration
}

func (f *Firestore) Analytics() interfaces.AnalyticsRepository {
	return f.analytics
}

func (f *Firestore) DismissedMeeting() interfaces.DismissedMeetingRepository {
	return f.dismissed
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
