package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/service/airtable"
	"github.com/createai-lab/createai/pkg/service/bigin"
	"github.com/createai-lab/createai/pkg/service/calendar"
	"github.com/createai-lab/createai/pkg/service/contentgen"
	"github.com/createai-lab/createai/pkg/service/freshdesk"
	"github.com/createai-lab/createai/pkg/service/otter"
)

// CRMFactory builds a MeetingCRM client for one user from their stored
// integration credentials.
type CRMFactory func(ctx context.Context, userID types.UserID) (interfaces.MeetingCRM, error)

// TranscriptFactory builds a TranscriptProvider for one user.
type TranscriptFactory func(ctx context.Context, userID types.UserID) (interfaces.TranscriptProvider, error)

type UseCases struct {
	repo           interfaces.Repository
	llmClient      gollem.LLMClient
	calendarClient *calendar.Client
	contentGen     *contentgen.Service

	crmFactory        CRMFactory
	transcriptFactory TranscriptFactory

	airtableOpts  []airtable.Option
	biginOpts     []bigin.Option
	otterOpts     []otter.Option
	freshdeskOpts []freshdesk.Option

	Auth AuthUseCaseInterface
}

type Option func(*UseCases)

// WithLLMClient enables the content generation operations.
func WithLLMClient(llmClient gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llmClient = llmClient
	}
}

func WithCalendarClient(client *calendar.Client) Option {
	return func(uc *UseCases) {
		uc.calendarClient = client
	}
}

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithCRMFactory overrides how per-user CRM clients are built.
func WithCRMFactory(factory CRMFactory) Option {
	return func(uc *UseCases) {
		uc.crmFactory = factory
	}
}

// WithTranscriptFactory overrides how per-user transcript providers are built.
func WithTranscriptFactory(factory TranscriptFactory) Option {
	return func(uc *UseCases) {
		uc.transcriptFactory = factory
	}
}

// WithAirtableOptions passes extra options to per-user Airtable clients.
func WithAirtableOptions(opts ...airtable.Option) Option {
	return func(uc *UseCases) {
		uc.airtableOpts = opts
	}
}

// WithBiginOptions passes extra options to per-user Bigin clients.
func WithBiginOptions(opts ...bigin.Option) Option {
	return func(uc *UseCases) {
		uc.biginOpts = opts
	}
}

// WithOtterOptions passes extra options to per-user Otter clients.
func WithOtterOptions(opts ...otter.Option) Option {
	return func(uc *UseCases) {
		uc.otterOpts = opts
	}
}

// WithFreshdeskOptions passes extra options to per-user Freshdesk clients.
func WithFreshdeskOptions(opts ...freshdesk.Option) Option {
	return func(uc *UseCases) {
		uc.freshdeskOpts = opts
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:           repo,
		calendarClient: calendar.New(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.llmClient != nil {
		uc.contentGen = contentgen.New(uc.llmClient)
	}
	if uc.crmFactory == nil {
		uc.crmFactory = uc.defaultCRMFactory
	}
	if uc.transcriptFactory == nil {
		uc.transcriptFactory = uc.defaultTranscriptFactory
	}

	return uc
}

// defaultCRMFactory prefers the user's Airtable integration, falling back to
// Bigin when Airtable is not connected.
func (uc *UseCases) defaultCRMFactory(ctx context.Context, userID types.UserID) (interfaces.MeetingCRM, error) {
	if integration, err := uc.repo.Integration().GetByProvider(ctx, userID, types.ProviderAirtable); err == nil {
		if integration.Status == types.IntegrationStatusConnected &&
			integration.Credentials != nil && integration.Credentials.APIKey != "" {
			return airtable.New(
				integration.Credentials.APIKey,
				integration.Credentials.BaseID,
				uc.airtableOpts...,
			)
		}
	}

	if integration, err := uc.repo.Integration().GetByProvider(ctx, userID, types.ProviderBigin); err == nil {
		if integration.Status == types.IntegrationStatusConnected &&
			integration.Credentials != nil && integration.Credentials.OAuth != nil {
			store := bigin.NewIntegrationTokenStore(uc.repo.Integration(), userID)
			return bigin.New(store, uc.biginOpts...)
		}
	}

	return nil, goerr.New("no connected CRM integration",
		goerr.V("userID", userID),
	)
}

func (uc *UseCases) defaultTranscriptFactory(ctx context.Context, userID types.UserID) (interfaces.TranscriptProvider, error) {
	integration, err := uc.repo.Integration().GetByProvider(ctx, userID, types.ProviderOtter)
	if err != nil {
		return nil, goerr.Wrap(err, "no otter integration", goerr.V("userID", userID))
	}
	if integration.Credentials == nil || integration.Credentials.APIKey == "" {
		return nil, goerr.New("otter integration has no API key", goerr.V("userID", userID))
	}

	return otter.New(integration.Credentials.APIKey, uc.otterOpts...)
}
