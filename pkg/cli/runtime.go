package cli

import (
	"context"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/cli/config"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/usecase"
	"github.com/secmon-lab/riskgraph/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var errInvalidArgument = goerr.New("invalid argument")

// runtime bundles the flag groups every analysis command shares
type runtime struct {
	repo      config.Repository
	dataset   config.Dataset
	analytics config.Analytics
	format    string
}

func (x *runtime) flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.dataset.Flags()...)
	flags = append(flags, x.analytics.Flags()...)
	flags = append(flags, &cli.StringFlag{
		Name:        "format",
		Aliases:     []string{"f"},
		Usage:       "Output format (text, json)",
		Value:       formatText,
		Sources:     cli.EnvVars("RISKGRAPH_FORMAT"),
		Destination: &x.format,
	})
	return flags
}

// open builds the repository and use cases. A configured dataset is loaded into
// the in-memory backend; persistent backends are written only by the import command.
func (x *runtime) open(ctx context.Context) (*usecase.UseCases, interfaces.Repository, error) {
	if x.format != formatText && x.format != formatJSON {
		return nil, nil, goerr.Wrap(errInvalidArgument, "unsupported output format", goerr.V("format", x.format))
	}

	cfg, err := x.analytics.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load calibration")
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	if x.repo.Backend() == config.BackendMemory || x.repo.Backend() == "" {
		ds, err := x.dataset.Load(ctx)
		if err != nil {
			_ = repo.Close()
			return nil, nil, goerr.Wrap(err, "failed to load dataset")
		}
		if ds != nil {
			stats, err := ds.Import(ctx, repo)
			if err != nil {
				_ = repo.Close()
				return nil, nil, goerr.Wrap(err, "failed to load dataset into memory")
			}
			logging.From(ctx).Debug("dataset loaded", "dataset", x.dataset, "stats", stats)
		}
	}

	return usecase.New(repo, usecase.WithAnalyticsConfig(cfg)), repo, nil
}

func closeRepository(ctx context.Context, repo interfaces.Repository) {
	if err := repo.Close(); err != nil {
		logging.From(ctx).Error("failed to close repository", "error", err.Error())
	}
}

func parseID(s, name string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.Wrap(errInvalidArgument, "id must be a positive integer", goerr.V(name, s))
	}
	return id, nil
}

// argID parses the positional argument at index i
func argID(c *cli.Command, i int, name string) (int64, error) {
	if c.Args().Len() <= i {
		return 0, goerr.Wrap(errInvalidArgument, "missing argument", goerr.V("name", name))
	}
	return parseID(c.Args().Get(i), name)
}

// argIDs parses every positional argument, rejecting more than the network map bound
func argIDs(c *cli.Command, name string) ([]int64, error) {
	args := c.Args().Slice()
	if len(args) == 0 {
		return nil, goerr.Wrap(errInvalidArgument, "at least one id is required", goerr.V("name", name))
	}
	if len(args) > usecase.MaxNetworkMapAssets {
		return nil, goerr.Wrap(usecase.ErrTooManyAssets, "too many ids",
			goerr.V("count", len(args)), goerr.V("max", usecase.MaxNetworkMapAssets))
	}

	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
