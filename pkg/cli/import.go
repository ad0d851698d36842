package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/cli/config"
	"github.com/secmon-lab/riskgraph/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdImport() *cli.Command {
	var repoCfg config.Repository
	var dataset config.Dataset

	var flags []cli.Flag
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, dataset.Flags()...)

	return &cli.Command{
		Name:  "import",
		Usage: "Write a dataset into the configured repository",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			if dataset.Path() == "" {
				return goerr.Wrap(errInvalidArgument, "--dataset is required")
			}
			if repoCfg.Backend() == config.BackendMemory || repoCfg.Backend() == "" {
				logger.Warn("Importing into the in-memory repository; data is discarded on exit")
			}

			ds, err := dataset.Load(ctx)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer closeRepository(ctx, repo)

			stats, err := ds.Import(ctx, repo)
			if err != nil {
				return goerr.Wrap(err, "failed to import dataset", goerr.V(config.DatasetPathKey, dataset.Path()))
			}

			logger.Info("Dataset imported", "dataset", dataset, "repository", repoCfg, "stats", stats)
			return nil
		},
	}
}
