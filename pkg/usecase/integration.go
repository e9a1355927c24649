package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/service/airtable"
	"github.com/createai-lab/createai/pkg/service/bigin"
	"github.com/createai-lab/createai/pkg/service/freshdesk"
	"github.com/createai-lab/createai/pkg/service/otter"
)

// UpsertIntegration stores or replaces a user's integration for one provider.
func (uc *UseCases) UpsertIntegration(ctx context.Context, userID types.UserID, integration *model.Integration) (*model.Integration, error) {
	integration.UserID = userID
	if err := integration.Validate(); err != nil {
		return nil, err
	}

	upserted, err := uc.repo.Integration().Upsert(ctx, integration)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert integration",
			goerr.V("userID", userID),
			goerr.V("provider", integration.Provider),
		)
	}

	return upserted, nil
}

// ListIntegrations returns the user's integrations.
func (uc *UseCases) ListIntegrations(ctx context.Context, userID types.UserID) ([]*model.Integration, error) {
	integrations, err := uc.repo.Integration().ListByUser(ctx, userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list integrations",
			goerr.V("userID", userID),
		)
	}
	return integrations, nil
}

// DeleteIntegration removes a user's integration for one provider.
func (uc *UseCases) DeleteIntegration(ctx context.Context, userID types.UserID, provider types.IntegrationProvider) error {
	if err := uc.repo.Integration().Delete(ctx, userID, provider); err != nil {
		return goerr.Wrap(err, "failed to delete integration",
			goerr.V("userID", userID),
			goerr.V("provider", provider),
		)
	}
	return nil
}

// TestIntegration verifies a stored integration against its provider and
// updates the integration's status with the outcome.
func (uc *UseCases) TestIntegration(ctx context.Context, userID types.UserID, provider types.IntegrationProvider) error {
	integration, err := uc.repo.Integration().GetByProvider(ctx, userID, provider)
	if err != nil {
		return goerr.Wrap(err, "integration not found",
			goerr.V("userID", userID),
			goerr.V("provider", provider),
		)
	}

	tester, err := uc.connectionTester(userID, integration)
	if err != nil {
		return err
	}

	testErr := tester.TestConnection(ctx)

	if testErr != nil {
		integration.Status = types.IntegrationStatusError
	} else {
		integration.Status = types.IntegrationStatusConnected
		integration.LastValidated = time.Now().UTC()
	}
	if _, err := uc.repo.Integration().Upsert(ctx, integration); err != nil {
		return goerr.Wrap(err, "failed to record integration test result",
			goerr.V("userID", userID),
			goerr.V("provider", provider),
		)
	}

	if testErr != nil {
		return goerr.Wrap(testErr, "integration test failed",
			goerr.V("provider", provider),
		)
	}
	return nil
}

func (uc *UseCases) connectionTester(userID types.UserID, integration *model.Integration) (interfaces.ConnectionTester, error) {
	switch integration.Provider {
	case types.ProviderAirtable:
		if integration.Credentials == nil || integration.Credentials.APIKey == "" {
			return nil, goerr.New("airtable integration has no API key")
		}
		return airtable.New(integration.Credentials.APIKey, integration.Credentials.BaseID, uc.airtableOpts...)

	case types.ProviderBigin:
		if integration.Credentials == nil || integration.Credentials.OAuth == nil {
			return nil, goerr.New("bigin integration has no OAuth tokens")
		}
		store := bigin.NewIntegrationTokenStore(uc.repo.Integration(), userID)
		return bigin.New(store, uc.biginOpts...)

	case types.ProviderOtter:
		if integration.Credentials == nil || integration.Credentials.APIKey == "" {
			return nil, goerr.New("otter integration has no API key")
		}
		return otter.New(integration.Credentials.APIKey, uc.otterOpts...)

	case types.ProviderFreshdesk:
		if integration.Credentials == nil || integration.Credentials.APIKey == "" || integration.Credentials.Domain == "" {
			return nil, goerr.New("freshdesk integration needs an API key and domain")
		}
		return freshdesk.New(integration.Credentials.APIKey, integration.Credentials.Domain, uc.freshdeskOpts...)

	default:
		return nil, goerr.New("provider has no connection test",
			goerr.V("provider", integration.Provider),
		)
	}
}

// GetTranscripts fetches the user's transcripts within a window through their
// transcript provider integration.
func (uc *UseCases) GetTranscripts(ctx context.Context, userID types.UserID, start, end time.Time) ([]*model.Transcript, error) {
	provider, err := uc.transcriptFactory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return provider.GetSpeeches(ctx, start, end)
}
