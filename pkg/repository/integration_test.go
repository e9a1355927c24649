package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/repository/firestore"
	"github.com/createai-lab/createai/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func runIntegrationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Upsert creates integration", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		integration := &model.Integration{
			UserID:   "user-1",
			Provider: types.ProviderAirtable,
			Status:   types.IntegrationStatusConnected,
			Credentials: &model.Credentials{
				APIKey: "patXXX",
				BaseID: "appYYY",
			},
		}

		created, err := repo.Integration().Upsert(ctx, integration)
		gt.NoError(t, err).Required()

		gt.String(t, string(created.ID)).NotEqual("")
		gt.Value(t, created.Status).Equal(types.IntegrationStatusConnected)
		gt.Value(t, created.Credentials).NotNil().Required()
		gt.Value(t, created.Credentials.APIKey).Equal("patXXX")
		gt.Value(t, created.Credentials.BaseID).Equal("appYYY")
	})

	t.Run("Upsert keeps one integration per provider", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first, err := repo.Integration().Upsert(ctx, &model.Integration{
			UserID:   "user-2",
			Provider: types.ProviderOtter,
			Status:   types.IntegrationStatusConnected,
		})
		gt.NoError(t, err).Required()

		second, err := repo.Integration().Upsert(ctx, &model.Integration{
			UserID:   "user-2",
			Provider: types.ProviderOtter,
			Status:   types.IntegrationStatusError,
		})
		gt.NoError(t, err).Required()

		gt.Value(t, second.ID).Equal(first.ID)
		gt.Value(t, second.CreatedAt).Equal(first.CreatedAt)

		integrations, err := repo.Integration().ListByUser(ctx, "user-2")
		gt.NoError(t, err).Required()
		gt.Array(t, integrations).Length(1)
		gt.Value(t, integrations[0].Status).Equal(types.IntegrationStatusError)
	})

	t.Run("Upsert round-trips OAuth tokens", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
		_, err := repo.Integration().Upsert(ctx, &model.Integration{
			UserID:   "user-3",
			Provider: types.ProviderBigin,
			Status:   types.IntegrationStatusConnected,
			Credentials: &model.Credentials{
				OAuth: &model.OAuthTokens{
					AccessToken:  "access-token",
					RefreshToken: "refresh-token",
					ClientID:     "client-id",
					ClientSecret: "client-secret",
					ExpiresAt:    expiresAt,
				},
			},
		})
		gt.NoError(t, err).Required()

		retrieved, err := repo.Integration().GetByProvider(ctx, "user-3", types.ProviderBigin)
		gt.NoError(t, err).Required()

		gt.Value(t, retrieved.Credentials).NotNil().Required()
		gt.Value(t, retrieved.Credentials.OAuth).NotNil().Required()
		gt.Value(t, retrieved.Credentials.OAuth.AccessToken).Equal("access-token")
		gt.Value(t, retrieved.Credentials.OAuth.RefreshToken).Equal("refresh-token")
		gt.Bool(t, retrieved.Credentials.OAuth.ExpiresAt.Equal(expiresAt)).True()
	})

	t.Run("GetByProvider returns error for missing integration", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Integration().GetByProvider(ctx, "user-4", types.ProviderWordPress)
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)).True()
	})

	t.Run("Delete removes integration", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Integration().Upsert(ctx, &model.Integration{
			UserID:   "user-5",
			Provider: types.ProviderAirtable,
			Status:   types.IntegrationStatusConnected,
		})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Integration().Delete(ctx, "user-5", types.ProviderAirtable))

		_, err = repo.Integration().GetByProvider(ctx, "user-5", types.ProviderAirtable)
		gt.Value(t, err).NotNil()

		err = repo.Integration().Delete(ctx, "user-5", types.ProviderAirtable)
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)).True()
	})
}

func TestMemoryIntegrationRepository(t *testing.T) {
	runIntegrationRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreIntegrationRepository(t *testing.T) {
	runIntegrationRepositoryTest(t, newFirestoreRepository)
}
