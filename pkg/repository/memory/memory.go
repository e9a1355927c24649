package memory

import (
	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = goerr.New("not found")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-memory repository used for development and tests.
type Memory struct {
	user        *userRepository
	org         *organizationRepository
	project     *projectRepository
	contentItem *contentItemRepository
	integration *integrationRepository
	analytics   *analyticsRepository
	dismissed   *dismissedMeetingRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		user:        newUserRepository(),
		org:         newOrganizationRepository(),
		project:     newProjectRepository(),
		contentItem: newContentItemRepository(),
		integration: newIntegrationRepository(),
		analytics:   newAnalyticsRepository(),
		dismissed:   newDismissedMeetingRepository(),
	}
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Organization() interfaces.OrganizationRepository {
	return m.org
}

func (m *Memory) Project() interfaces.ProjectRepository {
	return m.project
}

func (m *Memory) ContentItem() interfaces.ContentItemRepository {
	return m.contentItem
}

func (m *Memory) Integration() interfaces.IntegrationRepository {
	return m.integration
}

func (m *Memory) Analytics() interfaces.AnalyticsRepository {
	return m.analytics
}

func (m *Memory) DismissedMeeting() interfaces.DismissedMeetingRepository {
	return m.dismissed
}

func (m *Memory) Close() error {
	return nil
}

func copyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
