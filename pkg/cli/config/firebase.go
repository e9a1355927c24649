package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/createai-lab/createai/pkg/domain/interfaces"
	"github.com/createai-lab/createai/pkg/usecase"
	"github.com/createai-lab/createai/pkg/utils/logging"
)

// Firebase holds CLI flags for Firebase authentication configuration
type Firebase struct {
	projectID string
	noAuthUID string
}

// Flags returns CLI flags for Firebase configuration
func (f *Firebase) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firebase-project-id",
			Usage:       "Firebase project ID used to verify ID tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("CREATEAI_FIREBASE_PROJECT_ID"),
			Destination: &f.projectID,
		},
	}
}

// SetNoAuthUID enables no-auth mode with the given fixed user ID
func (f *Firebase) SetNoAuthUID(uid string) {
	f.noAuthUID = uid
}

// IsNoAuthMode returns true when authentication is bypassed
func (f *Firebase) IsNoAuthMode() bool {
	return f.noAuthUID != ""
}

// Configure builds the authentication use case: token verification against
// Firebase, or a fixed user when no-auth mode is enabled.
func (f *Firebase) Configure(ctx context.Context, repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if f.noAuthUID != "" {
		logging.Default().Warn("Running in no-auth mode (development only)", "user_id", f.noAuthUID)
		return usecase.NewNoAuthnUseCase(repo, f.noAuthUID, f.noAuthUID+"@localhost", "No Auth User"), nil
	}

	if f.projectID == "" {
		return nil, goerr.New("firebase-project-id is required (or use --no-auth for development)")
	}

	authUC, err := usecase.NewAuthUseCase(ctx, repo, f.projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure firebase authentication")
	}

	logging.Default().Info("Firebase authentication enabled", "project_id", f.projectID)
	return authUC, nil
}
