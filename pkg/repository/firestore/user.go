package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type userDocument struct {
	ID              string    `firestore:"id"`
	Email           string    `firestore:"email"`
	FirstName       string    `firestore:"first_name"`
	LastName        string    `firestore:"last_name"`
	ProfileImageURL string    `firestore:"profile_image_url"`
	CreatedAt       time.Time `firestore:"created_at"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *userRepository) usersCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_users"
	}
	return "users"
}

func userToDocument(user *model.User) *userDocument {
	return &userDocument{
		ID:              string(user.ID),
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		ProfileImageURL: user.ProfileImageURL,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

func userToModel(doc *userDocument) *model.User {
	return &model.User{
		ID:              types.UserID(doc.ID),
		Email:           doc.Email,
		FirstName:       doc.FirstName,
		LastName:        doc.LastName,
		ProfileImageURL: doc.ProfileImageURL,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

func (r *userRepository) Get(ctx context.Context, id types.UserID) (*model.User, error) {
	docRef := r.client.Collection(r.usersCollection()).Doc(string(id))
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var userDoc userDocument
	if err := doc.DataTo(&userDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", id))
	}

	return userToModel(&userDoc), nil
}

func (r *userRepository) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	docRef := r.client.Collection(r.usersCollection()).Doc(string(user.ID))

	now := time.Now().UTC()
	user.CreatedAt = now
	doc, err := docRef.Get(ctx)
	if err == nil {
		var existing userDocument
		if err := doc.DataTo(&existing); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", user.ID))
		}
		user.CreatedAt = existing.CreatedAt
	} else if status.Code(err) != codes.NotFound {
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", user.ID))
	}
	user.UpdatedAt = now

	upserted := userToDocument(user)
	if _, err := docRef.Set(ctx, upserted); err != nil {
		return nil, goerr.Wrap(err, "failed to upsert user", goerr.V("id", user.ID))
	}

	return userToModel(upserted), nil
}
