package model

import (
	"time"

	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// AnalyticsSnapshot is a point-in-time metrics capture for an organization and
// a source (podcast, blog, social, ...).
type AnalyticsSnapshot struct {
	ID             types.SnapshotID     `json:"id"`
	OrganizationID types.OrganizationID `json:"organizationId"`
	Source         string               `json:"source"`
	Metrics        map[string]any       `json:"metrics"`
	Timestamp      time.Time            `json:"timestamp"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// Validate checks if the AnalyticsSnapshot is valid
func (s *AnalyticsSnapshot) Validate() error {
	if s.OrganizationID == "" {
		return goerr.New("snapshot organization ID is required")
	}
	if s.Source == "" {
		return goerr.New("snapshot source is required")
	}
	if len(s.Metrics) == 0 {
		return goerr.New("snapshot metrics are required")
	}
	return nil
}

// DismissedMeeting records a user's decision to hide a meeting from the
// enrichment UI. Unique per (user, meeting).
type DismissedMeeting struct {
	UserID    types.UserID `json:"userId"`
	MeetingID string       `json:"meetingId"`
	CreatedAt time.Time    `json:"createdAt"`
}
