package worker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/repository/memory"
	"github.com/createai-lab/createai/pkg/service/bigin"
	"github.com/createai-lab/createai/pkg/service/otter"
	"github.com/createai-lab/createai/pkg/service/worker"
)

func seedBigin(t *testing.T, repo *memory.Memory, userID types.UserID, expiresAt time.Time) {
	t.Helper()
	_, err := repo.Integration().Upsert(context.Background(), &model.Integration{
		UserID:   userID,
		Provider: types.ProviderBigin,
		Status:   types.IntegrationStatusConnected,
		Credentials: &model.Credentials{
			OAuth: &model.OAuthTokens{
				AccessToken:  "token-old",
				RefreshToken: "refresh-1",
				ClientID:     "client-id",
				ClientSecret: "client-secret",
				ExpiresAt:    expiresAt,
			},
		},
	})
	gt.NoError(t, err)
}

func TestHealthWorkerRefreshesExpiringBiginToken(t *testing.T) {
	var refreshCalls int
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-new",
			"expires_in":   3600,
		})
	}))
	defer tokenSrv.Close()

	repo := memory.New()
	userID := types.UserID("user-1")
	// Expires in 10 minutes, inside the 30 minute refresh buffer.
	seedBigin(t, repo, userID, time.Now().Add(10*time.Minute))

	w := worker.NewHealthWorker(repo,
		worker.WithBiginOptions(bigin.WithTokenURL(tokenSrv.URL)),
	)
	w.Sweep(context.Background())

	gt.Value(t, refreshCalls).Equal(1)

	integration := gt.R1(repo.Integration().GetByProvider(context.Background(), userID, types.ProviderBigin)).NoError(t)
	gt.Value(t, integration.Credentials.OAuth.AccessToken).Equal("token-new")
	gt.Value(t, integration.Status).Equal(types.IntegrationStatusConnected)
	gt.False(t, integration.LastValidated.IsZero())
	gt.True(t, integration.Credentials.OAuth.ExpiresAt.After(time.Now().Add(50*time.Minute)))
}

func TestHealthWorkerSkipsFreshBiginToken(t *testing.T) {
	var refreshCalls int
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
	}))
	defer tokenSrv.Close()

	repo := memory.New()
	userID := types.UserID("user-1")
	seedBigin(t, repo, userID, time.Now().Add(2*time.Hour))

	w := worker.NewHealthWorker(repo,
		worker.WithBiginOptions(bigin.WithTokenURL(tokenSrv.URL)),
	)
	w.Sweep(context.Background())

	gt.Value(t, refreshCalls).Equal(0)
}

func TestHealthWorkerFlagsRejectedRefreshToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
	}))
	defer tokenSrv.Close()

	repo := memory.New()
	userID := types.UserID("user-1")
	seedBigin(t, repo, userID, time.Now().Add(5*time.Minute))

	w := worker.NewHealthWorker(repo,
		worker.WithBiginOptions(bigin.WithTokenURL(tokenSrv.URL)),
	)
	w.Sweep(context.Background())

	integration := gt.R1(repo.Integration().GetByProvider(context.Background(), userID, types.ProviderBigin)).NoError(t)
	gt.Value(t, integration.Status).Equal(types.IntegrationStatusNeedsOAuth)
}

func seedOtter(t *testing.T, repo *memory.Memory, userID types.UserID, lastValidated time.Time) {
	t.Helper()
	_, err := repo.Integration().Upsert(context.Background(), &model.Integration{
		UserID:        userID,
		Provider:      types.ProviderOtter,
		Status:        types.IntegrationStatusConnected,
		Credentials:   &model.Credentials{APIKey: "otter-key"},
		LastValidated: lastValidated,
	})
	gt.NoError(t, err)
}

func TestHealthWorkerInvalidatesBadOtterKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	repo := memory.New()
	userID := types.UserID("user-1")
	seedOtter(t, repo, userID, time.Now().Add(-48*time.Hour))

	w := worker.NewHealthWorker(repo,
		worker.WithOtterOptions(otter.WithBaseURL(srv.URL)),
	)
	w.Sweep(context.Background())

	integration := gt.R1(repo.Integration().GetByProvider(context.Background(), userID, types.ProviderOtter)).NoError(t)
	gt.Value(t, integration.Status).Equal(types.IntegrationStatusError)
}

func TestHealthWorkerKeepsOtterOnNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	repo := memory.New()
	userID := types.UserID("user-1")
	seedOtter(t, repo, userID, time.Now().Add(-48*time.Hour))

	w := worker.NewHealthWorker(repo,
		worker.WithOtterOptions(otter.WithBaseURL(srv.URL)),
	)
	w.Sweep(context.Background())

	integration := gt.R1(repo.Integration().GetByProvider(context.Background(), userID, types.ProviderOtter)).NoError(t)
	gt.Value(t, integration.Status).Equal(types.IntegrationStatusConnected)
}

func TestHealthWorkerSkipsRecentlyValidatedOtter(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	repo := memory.New()
	userID := types.UserID("user-1")
	seedOtter(t, repo, userID, time.Now().Add(-1*time.Hour))

	w := worker.NewHealthWorker(repo,
		worker.WithOtterOptions(otter.WithBaseURL(srv.URL)),
	)
	w.Sweep(context.Background())

	gt.Value(t, calls).Equal(0)
}

func TestHealthWorkerStartStop(t *testing.T) {
	repo := memory.New()

	w := worker.NewHealthWorker(repo, worker.WithInterval(time.Hour))
	gt.NoError(t, w.Start(context.Background()))
	w.Stop()
}
