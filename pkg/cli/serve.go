package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/cli/config"
	httpctrl "github.com/secmon-lab/riskgraph/pkg/controller/http"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/service/worker"
	"github.com/secmon-lab/riskgraph/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var rt runtime
	var addr string
	var refresh time.Duration

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RISKGRAPH_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "dataset-refresh",
			Usage:       "Reload the dataset into the in-memory repository at this interval (0 disables)",
			Category:    "Dataset",
			Sources:     cli.EnvVars("RISKGRAPH_DATASET_REFRESH"),
			Destination: &refresh,
		},
	}
	flags = append(flags, rt.flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP API server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			uc, repo, err := rt.open(ctx)
			if err != nil {
				return err
			}
			defer closeRepository(ctx, repo)

			if refresh > 0 && rt.dataset.Path() != "" && rt.repo.Backend() != config.BackendFirestore {
				w := worker.NewDatasetRefreshWorker(repo, datasetRefresher(&rt.dataset), refresh)
				if err := w.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start dataset refresh worker")
				}
				defer w.Stop()
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr, "repository", rt.repo)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("Context cancelled")
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown completed")
			return nil
		},
	}
}

func datasetRefresher(dataset *config.Dataset) worker.Refresher {
	return worker.RefresherFunc(func(ctx context.Context, repo interfaces.Repository) (int, error) {
		ds, err := dataset.Load(ctx)
		if err != nil {
			return 0, err
		}
		stats, err := ds.Import(ctx, repo)
		if err != nil {
			return 0, err
		}
		return stats.Assets + stats.Relationships + stats.Risks + stats.Assessments + stats.Incidents, nil
	})
}
