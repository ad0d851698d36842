package cli

import (
	"context"
	"io"

	"github.com/secmon-lab/riskgraph/pkg/cli/config"
	"github.com/secmon-lab/riskgraph/pkg/utils/errutil"
	"github.com/secmon-lab/riskgraph/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	return run(ctx, args, version, nil)
}

func run(ctx context.Context, args []string, version string, w io.Writer) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var tracingCfg config.Tracing
	var closers []func()

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, tracingCfg.Flags()...)

	// Closed in reverse after the final error is reported, so the logger outlives the reporters
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	app := &cli.Command{
		Name:    "riskgraph",
		Usage:   "Asset dependency and risk analytics",
		Version: version,
		Flags:   flags,
		Writer:  w,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, f)

			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, flush)

			shutdown, err := tracingCfg.Configure(ctx, version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Default().Warn("failed to shutdown tracer provider", "error", err)
				}
			})

			logging.Default().Debug("Starting riskgraph",
				"logger", loggerCfg,
				"sentry", sentryCfg,
				"tracing", tracingCfg.IsEnabled(),
			)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdGraph(),
			cmdMetrics(),
			cmdImpact(),
			cmdNetwork(),
			cmdAssess(),
			cmdResidual(),
			cmdCompare(),
			cmdBulk(),
			cmdCriticality(),
			cmdImport(),
			cmdServe(),
			cmdMigrate(),
			cmdValidate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		return errutil.Handle(ctx, err, "failed to run app")
	}

	return nil
}
