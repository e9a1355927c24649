package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
)

// NoAuthnUseCase authenticates every request as a fixed user. Development and
// testing only.
type NoAuthnUseCase struct {
	repo  interfaces.Repository
	sub   string
	email string
	name  string
}

func NewNoAuthnUseCase(repo interfaces.Repository, sub, email, name string) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		repo:  repo,
		sub:   sub,
		email: email,
		name:  name,
	}
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}

// VerifyToken ignores the token and returns the configured user, upserted so
// downstream operations always find it.
func (uc *NoAuthnUseCase) VerifyToken(ctx context.Context, idToken string) (*model.User, error) {
	first, last := splitName(uc.name)
	user, err := uc.repo.User().Upsert(ctx, &model.User{
		ID:        types.UserID(uc.sub),
		Email:     uc.email,
		FirstName: first,
		LastName:  last,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert no-auth user")
	}
	return user, nil
}
