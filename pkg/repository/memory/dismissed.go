package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
)

type dismissedKey struct {
	userID    types.UserID
	meetingID string
}

type dismissedMeetingRepository struct {
	mu        sync.RWMutex
	dismissed map[dismissedKey]*model.DismissedMeeting
}

func newDismissedMeetingRepository() *dismissedMeetingRepository {
	return &dismissedMeetingRepository{
		dismissed: make(map[dismissedKey]*model.DismissedMeeting),
	}
}

func (r *dismissedMeetingRepository) Dismiss(ctx context.Context, userID types.UserID, meetingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := dismissedKey{userID: userID, meetingID: meetingID}
	if _, exists := r.dismissed[key]; exists {
		// Dismissing twice is a no-op
		return nil
	}

	r.dismissed[key] = &model.DismissedMeeting{
		UserID:    userID,
		MeetingID: meetingID,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

func (r *dismissedMeetingRepository) List(ctx context.Context, userID types.UserID) ([]*model.DismissedMeeting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var dismissed []*model.DismissedMeeting
	for key, d := range r.dismissed {
		if key.userID == userID {
			copied := *d
			dismissed = append(dismissed, &copied)
		}
	}

	sort.Slice(dismissed, func(i, j int) bool {
		return dismissed[i].CreatedAt.Before(dismissed[j].CreatedAt)
	})

	return dismissed, nil
}
