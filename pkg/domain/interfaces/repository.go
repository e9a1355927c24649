package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	User() UserRepository
	Organization() OrganizationRepository
	Project() ProjectRepository
	ContentItem() ContentItemRepository
	Integration() IntegrationRepository
	Analytics() AnalyticsRepository
	DismissedMeeting() DismissedMeetingRepository

	Close() error
}
