package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/createai-lab/createai/pkg/cli/config"
	httpctrl "github.com/createai-lab/createai/pkg/controller/http"
	"github.com/createai-lab/createai/pkg/service/airtable"
	"github.com/createai-lab/createai/pkg/service/worker"
	"github.com/createai-lab/createai/pkg/usecase"
	"github.com/createai-lab/createai/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var noAuthUID string
	var mappingPath string
	var workerDisabled bool
	var workerInterval time.Duration
	var repoCfg config.Repository
	var openaiCfg config.OpenAI
	var firebaseCfg config.Firebase

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("CREATEAI_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run as the specified user ID (development only). Example: --no-auth=dev-user",
			Category:    "Authentication",
			Sources:     cli.EnvVars("CREATEAI_NO_AUTH"),
			Destination: &noAuthUID,
		},
		&cli.StringFlag{
			Name:        "airtable-mapping",
			Usage:       "Path to a TOML file overriding Airtable field-name candidates",
			Sources:     cli.EnvVars("CREATEAI_AIRTABLE_MAPPING"),
			Destination: &mappingPath,
		},
		&cli.BoolFlag{
			Name:        "disable-health-worker",
			Usage:       "Disable the background integration health worker",
			Sources:     cli.EnvVars("CREATEAI_DISABLE_HEALTH_WORKER"),
			Destination: &workerDisabled,
		},
		&cli.DurationFlag{
			Name:        "health-worker-interval",
			Usage:       "Interval between integration health sweeps",
			Value:       worker.DefaultInterval,
			Sources:     cli.EnvVars("CREATEAI_HEALTH_WORKER_INTERVAL"),
			Destination: &workerInterval,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, openaiCfg.Flags()...)
	flags = append(flags, firebaseCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			if noAuthUID != "" {
				firebaseCfg.SetNoAuthUID(noAuthUID)
			}
			authUC, err := firebaseCfg.Configure(ctx, repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			ucOpts := []usecase.Option{
				usecase.WithAuth(authUC),
			}

			llmClient, err := openaiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize OpenAI client")
			}
			if llmClient != nil {
				ucOpts = append(ucOpts, usecase.WithLLMClient(llmClient))
				logging.Default().Info("Content generation enabled")
			} else {
				logging.Default().Info("OpenAI API key not configured, content generation disabled")
			}

			if mappingPath != "" {
				mapping, err := airtable.LoadMapping(mappingPath)
				if err != nil {
					return goerr.Wrap(err, "failed to load Airtable mapping")
				}
				ucOpts = append(ucOpts, usecase.WithAirtableOptions(airtable.WithMapping(mapping)))
				logging.Default().Info("Airtable field mapping loaded", "path", mappingPath)
			}

			uc := usecase.New(repo, ucOpts...)

			// Start background health worker for integration credentials
			var healthWorker *worker.HealthWorker
			if !workerDisabled {
				healthWorker = worker.NewHealthWorker(repo, worker.WithInterval(workerInterval))
				if err := healthWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start health worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if healthWorker != nil {
					healthWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
