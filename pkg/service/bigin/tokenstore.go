package bigin

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
)

// integrationTokenStore reads and writes the OAuth token set of one user's
// Bigin integration, so every client sharing the store sees refreshed tokens
// immediately.
type integrationTokenStore struct {
	repo   interfaces.IntegrationRepository
	userID types.UserID
}

// NewIntegrationTokenStore returns a TokenStore backed by the user's stored
// Bigin integration record.
func NewIntegrationTokenStore(repo interfaces.IntegrationRepository, userID types.UserID) interfaces.TokenStore {
	return &integrationTokenStore{repo: repo, userID: userID}
}

func (s *integrationTokenStore) Get(ctx context.Context) (*model.OAuthTokens, error) {
	integration, err := s.repo.GetByProvider(ctx, s.userID, types.ProviderBigin)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load bigin integration",
			goerr.V("userID", s.userID),
		)
	}
	if integration.Credentials == nil || integration.Credentials.OAuth == nil {
		return nil, goerr.New("bigin integration has no OAuth tokens",
			goerr.V("userID", s.userID),
		)
	}

	tokens := *integration.Credentials.OAuth
	return &tokens, nil
}

func (s *integrationTokenStore) Persist(ctx context.Context, tokens *model.OAuthTokens) error {
	integration, err := s.repo.GetByProvider(ctx, s.userID, types.ProviderBigin)
	if err != nil {
		return goerr.Wrap(err, "failed to load bigin integration",
			goerr.V("userID", s.userID),
		)
	}

	if integration.Credentials == nil {
		integration.Credentials = &model.Credentials{}
	}
	copied := *tokens
	integration.Credentials.OAuth = &copied

	if _, err := s.repo.Upsert(ctx, integration); err != nil {
		return goerr.Wrap(err, "failed to persist bigin tokens",
			goerr.V("userID", s.userID),
		)
	}

	return nil
}
