package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/utils/logging"
)

// ErrCalendarUpstream marks a calendar feed failure so the controller can map
// it to 502 instead of 500.
var ErrCalendarUpstream = goerr.New("calendar feed unavailable")

// FetchCalendarEvents fetches the user's ICS feed and filters out meetings
// the user has dismissed.
func (uc *UseCases) FetchCalendarEvents(ctx context.Context, userID types.UserID, feedURL string, daysBack int) ([]model.CalendarEvent, error) {
	if feedURL == "" {
		feedURL = uc.calendarFeedURL(ctx, userID)
	}
	if feedURL == "" {
		return nil, goerr.New("no calendar feed URL configured",
			goerr.V("userID", userID),
		)
	}

	events, err := uc.calendarClient.Fetch(ctx, feedURL, daysBack)
	if err != nil {
		return nil, goerr.Wrap(ErrCalendarUpstream, err.Error())
	}

	dismissed, err := uc.repo.DismissedMeeting().List(ctx, userID)
	if err != nil {
		logging.From(ctx).Warn("failed to list dismissed meetings",
			"userID", userID, "error", err)
		return events, nil
	}

	hidden := make(map[string]bool, len(dismissed))
	for _, d := range dismissed {
		hidden[d.MeetingID] = true
	}

	visible := events[:0]
	for _, event := range events {
		if !hidden[event.ID] {
			visible = append(visible, event)
		}
	}

	return visible, nil
}

// calendarFeedURL reads the stored feed URL from the user's Outlook (or other
// calendar) integration settings.
func (uc *UseCases) calendarFeedURL(ctx context.Context, userID types.UserID) string {
	integration, err := uc.repo.Integration().GetByProvider(ctx, userID, types.ProviderOutlook)
	if err != nil {
		return ""
	}
	if url, ok := integration.Settings["feed_url"].(string); ok {
		return url
	}
	return ""
}

// DismissMeeting hides a calendar meeting for the user. Dismissing twice is a
// no-op.
func (uc *UseCases) DismissMeeting(ctx context.Context, userID types.UserID, meetingID string) error {
	if meetingID == "" {
		return goerr.New("meeting ID is required")
	}
	if err := uc.repo.DismissedMeeting().Dismiss(ctx, userID, meetingID); err != nil {
		return goerr.Wrap(err, "failed to dismiss meeting",
			goerr.V("userID", userID),
			goerr.V("meetingID", meetingID),
		)
	}
	return nil
}

// ListDismissedMeetings returns the user's dismissed meetings.
func (uc *UseCases) ListDismissedMeetings(ctx context.Context, userID types.UserID) ([]*model.DismissedMeeting, error) {
	dismissed, err := uc.repo.DismissedMeeting().List(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list dismissed meetings",
			goerr.V("userID", userID),
		)
	}
	return dismissed, nil
}
