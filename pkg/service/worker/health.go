package worker

import (
	"context"
	"errors"
	"time"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/createai-lab/createai/pkg/service/bigin"
	"github.com/createai-lab/createai/pkg/service/otter"
	"github.com/createai-lab/createai/pkg/utils/logging"
)

const (
	// DefaultInterval is the period between health check sweeps.
	DefaultInterval = 30 * time.Minute

	// initialDelay postpones the first sweep so server startup is never
	// blocked behind provider calls.
	initialDelay = time.Minute

	// refreshBuffer triggers a proactive Bigin token refresh when the access
	// token expires within this window.
	refreshBuffer = 30 * time.Minute

	// otterValidationInterval limits how often a stored Otter API key is
	// re-validated against the provider.
	otterValidationInterval = 24 * time.Hour
)

// HealthWorker periodically sweeps all stored integrations: Bigin OAuth
// tokens close to expiry are refreshed, stale Otter API keys re-validated.
// Every failure is logged and swallowed; the worker never takes down the
// server and never blocks request handling.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - For horizontal scaling, add leader election before running the sweep
type HealthWorker struct {
	repo     interfaces.Repository
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}

	biginOpts []bigin.Option
	otterOpts []otter.Option
	now       func() time.Time
}

type Option func(*HealthWorker)

// WithInterval overrides the sweep period.
func WithInterval(interval time.Duration) Option {
	return func(w *HealthWorker) {
		w.interval = interval
	}
}

// WithBiginOptions passes extra options to the Bigin clients the worker
// builds per integration.
func WithBiginOptions(opts ...bigin.Option) Option {
	return func(w *HealthWorker) {
		w.biginOpts = opts
	}
}

// WithOtterOptions passes extra options to the Otter clients the worker
// builds per integration.
func WithOtterOptions(opts ...otter.Option) Option {
	return func(w *HealthWorker) {
		w.otterOpts = opts
	}
}

func NewHealthWorker(repo interfaces.Repository, opts ...Option) *HealthWorker {
	w := &HealthWorker{
		repo:     repo,
		interval: DefaultInterval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the background sweep loop. The first sweep runs after a short
// delay; startup is never blocked.
func (w *HealthWorker) Start(ctx context.Context) error {
	logging.Default().Info("integration health worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion.
func (w *HealthWorker) Stop() {
	logging.Default().Info("integration health worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("integration health worker stopped")
}

func (w *HealthWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	select {
	case <-time.After(initialDelay):
		w.Sweep(ctx)
	case <-w.stopCh:
		return
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep(ctx)

		case <-w.stopCh:
			logging.Default().Info("integration health worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("integration health worker context cancelled")
			return
		}
	}
}

// Sweep performs a single health check cycle over all stored integrations.
// Errors are logged per integration and never abort the sweep.
func (w *HealthWorker) Sweep(ctx context.Context) {
	logger := logging.From(ctx)

	integrations, err := w.repo.Integration().ListAll(ctx)
	if err != nil {
		logger.Error("health sweep failed to list integrations", "error", err.Error())
		return
	}

	for _, integration := range integrations {
		switch integration.Provider {
		case types.ProviderBigin:
			w.checkBigin(ctx, integration)
		case types.ProviderOtter:
			w.checkOtter(ctx, integration)
		}
	}
}

// checkBigin refreshes the integration's OAuth tokens when they expire within
// the buffer. A rejected refresh token flips the integration to needs_oauth.
func (w *HealthWorker) checkBigin(ctx context.Context, integration *model.Integration) {
	logger := logging.From(ctx)

	if integration.Status != types.IntegrationStatusConnected {
		return
	}
	if integration.Credentials == nil || integration.Credentials.OAuth == nil {
		return
	}
	if !integration.Credentials.OAuth.NeedsRefresh(w.now(), refreshBuffer) {
		return
	}

	store := bigin.NewIntegrationTokenStore(w.repo.Integration(), integration.UserID)
	client, err := bigin.New(store, w.biginOpts...)
	if err != nil {
		logger.Error("failed to build bigin client for health check",
			"userID", integration.UserID, "error", err.Error())
		return
	}

	if _, err := client.RefreshAccessToken(ctx); err != nil {
		if errors.Is(err, bigin.ErrInvalidGrant) {
			logger.Warn("bigin refresh token rejected, flagging for re-authorization",
				"userID", integration.UserID)
			w.setStatus(ctx, integration, types.IntegrationStatusNeedsOAuth)
			return
		}
		logger.Warn("bigin token refresh failed (will retry next sweep)",
			"userID", integration.UserID, "error", err.Error())
		return
	}

	w.markValidated(ctx, integration.UserID, integration.Provider)
	logger.Debug("bigin tokens refreshed by health worker", "userID", integration.UserID)
}

// checkOtter re-validates the stored API key at most once a day. Only a
// credential error invalidates the integration; network failures are retried
// on a later sweep.
func (w *HealthWorker) checkOtter(ctx context.Context, integration *model.Integration) {
	logger := logging.From(ctx)

	if integration.Credentials == nil || integration.Credentials.APIKey == "" {
		return
	}
	if w.now().Sub(integration.LastValidated) < otterValidationInterval {
		return
	}

	client, err := otter.New(integration.Credentials.APIKey, w.otterOpts...)
	if err != nil {
		logger.Error("failed to build otter client for health check",
			"userID", integration.UserID, "error", err.Error())
		return
	}

	providerStatus, err := client.Validate(ctx)
	switch providerStatus {
	case otter.StatusOK:
		w.markValidated(ctx, integration.UserID, integration.Provider)
		logger.Debug("otter API key validated", "userID", integration.UserID)

	case otter.StatusCredentialError:
		logger.Warn("otter API key invalid, flagging integration",
			"userID", integration.UserID)
		w.setStatus(ctx, integration, types.IntegrationStatusError)

	default:
		// Outage, rate limit or network failure: not the key's fault.
		logger.Warn("otter validation inconclusive (will retry next sweep)",
			"userID", integration.UserID, "error", err.Error())
	}
}

func (w *HealthWorker) setStatus(ctx context.Context, integration *model.Integration, status types.IntegrationStatus) {
	integration.Status = status
	if _, err := w.repo.Integration().Upsert(ctx, integration); err != nil {
		logging.From(ctx).Error("failed to update integration status",
			"userID", integration.UserID,
			"provider", integration.Provider,
			"status", status,
			"error", err.Error())
	}
}

// markValidated reloads the integration before writing, so a token refresh
// persisted during the check is not overwritten with stale credentials.
func (w *HealthWorker) markValidated(ctx context.Context, userID types.UserID, provider types.IntegrationProvider) {
	integration, err := w.repo.Integration().GetByProvider(ctx, userID, provider)
	if err != nil {
		logging.From(ctx).Error("failed to reload integration after validation",
			"userID", userID, "provider", provider, "error", err.Error())
		return
	}

	integration.Status = types.IntegrationStatusConnected
	integration.LastValidated = w.now()
	if _, err := w.repo.Integration().Upsert(ctx, integration); err != nil {
		logging.From(ctx).Error("failed to persist integration validation",
			"userID", userID, "provider", provider, "error", err.Error())
	}
}
