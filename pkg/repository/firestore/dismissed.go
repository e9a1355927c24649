package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type dismissedMeetingDocument struct {
	UserID    string    `firestore:"user_id"`
	MeetingID string    `firestore:"meeting_id"`
	CreatedAt time.Time `firestore:"created_at"`
}

type dismissedMeetingRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newDismissedMeetingRepository(client *firestore.Client) *dismissedMeetingRepository {
	return &dismissedMeetingRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *dismissedMeetingRepository) dismissedCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_dismissed_meetings"
	}
	return "dismissed_meetings"
}

func (r *dismissedMeetingRepository) Dismiss(ctx context.Context, userID types.UserID, meetingID string) error {
	docRef := r.client.Collection(r.dismissedCollection()).Doc(string(userID) + ":" + meetingID)

	_, err := docRef.Get(ctx)
	if err == nil {
		// Dismissing twice is a no-op
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to get dismissed meeting",
			goerr.V("userID", userID), goerr.V("meetingID", meetingID))
	}

	doc := &dismissedMeetingDocument{
		UserID:    string(userID),
		MeetingID: meetingID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := docRef.Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to dismiss meeting",
			goerr.V("userID", userID), goerr.V("meetingID", meetingID))
	}

	return nil
}

func (r *dismissedMeetingRepository) List(ctx context.Context, userID types.UserID) ([]*model.DismissedMeeting, error) {
	iter := r.client.Collection(r.dismissedCollection()).
		Where("user_id", "==", string(userID)).
		Documents(ctx)
	defer iter.Stop()

	var dismissed []*model.DismissedMeeting
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate dismissed meetings", goerr.V("userID", userID))
		}

		var dismissedDoc dismissedMeetingDocument
		if err := doc.DataTo(&dismissedDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal dismissed meeting", goerr.V("userID", userID))
		}

		dismissed = append(dismissed, &model.DismissedMeeting{
			UserID:    types.UserID(dismissedDoc.UserID),
			MeetingID: dismissedDoc.MeetingID,
			CreatedAt: dismissedDoc.CreatedAt,
		})
	}

	sort.Slice(dismissed, func(i, j int) bool {
		return dismissed[i].CreatedAt.Before(dismissed[j].CreatedAt)
	})

	return dismissed, nil
}
