package memory

import (
	"context"
	"sync"
	"time"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type integrationKey struct {
	userID   types.UserID
	provider types.IntegrationProvider
}

type integrationRepository struct {
	mu           sync.RWMutex
	integrations map[integrationKey]*model.Integration
}

func newIntegrationRepository() *integrationRepository {
	return &integrationRepository{
		integrations: make(map[integrationKey]*model.Integration),
	}
}

func copyIntegration(i *model.Integration) *model.Integration {
	copied := *i
	copied.Settings = copyMap(i.Settings)
	if i.Credentials != nil {
		creds := *i.Credentials
		if i.Credentials.OAuth != nil {
			oauth := *i.Credentials.OAuth
			creds.OAuth = &oauth
		}
		copied.Credentials = &creds
	}
	return &copied
}

func (r *integrationRepository) Upsert(ctx context.Context, integration *model.Integration) (*model.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := integrationKey{userID: integration.UserID, provider: integration.Provider}
	now := time.Now().UTC()
	upserted := copyIntegration(integration)
	if existing, exists := r.integrations[key]; exists {
		upserted.ID = existing.ID
		upserted.CreatedAt = existing.CreatedAt
	} else {
		if upserted.ID == "" {
			upserted.ID = types.NewIntegrationID()
		}
		upserted.CreatedAt = now
	}
	if upserted.Status == "" {
		upserted.Status = types.IntegrationStatusSetupRequired
	}
	upserted.UpdatedAt = now

	r.integrations[key] = upserted
	return copyIntegration(upserted), nil
}

func (r *integrationRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var integrations []*model.Integration
	for key, i := range r.integrations {
		if key.userID == userID {
			integrations = append(integrations, copyIntegration(i))
		}
	}

	return integrations, nil
}

func (r *integrationRepository) ListAll(ctx context.Context) ([]*model.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var integrations []*model.Integration
	for _, i := range r.integrations {
		integrations = append(integrations, copyIntegration(i))
	}

	return integrations, nil
}

func (r *integrationRepository) GetByProvider(ctx context.Context, userID types.UserID, provider types.IntegrationProvider) (*model.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.integrations[integrationKey{userID: userID, provider: provider}]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "integration not found",
			goerr.V("userID", userID), goerr.V("provider", provider))
	}

	return copyIntegration(i), nil
}

func (r *integrationRepository) Delete(ctx context.Context, userID types.UserID, provider types.IntegrationProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := integrationKey{userID: userID, provider: provider}
	if _, exists := r.integrations[key]; !exists {
		return goerr.Wrap(ErrNotFound, "integration not found",
			goerr.V("userID", userID), goerr.V("provider", provider))
	}

	delete(r.integrations, key)
	return nil
}
