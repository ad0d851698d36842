package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"github.com/secmon-lab/riskgraph/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// analysis wraps an action that needs the shared runtime and renders its result
func analysis(rt *runtime, fn func(ctx context.Context, c *cli.Command, uc *usecase.UseCases) (any, error)) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		uc, repo, err := rt.open(ctx)
		if err != nil {
			return err
		}
		defer closeRepository(ctx, repo)

		result, err := fn(ctx, c, uc)
		if err != nil {
			return err
		}
		return render(c.Root().Writer, rt.format, result)
	}
}

func cmdGraph() *cli.Command {
	var rt runtime
	var depth int

	flags := append(rt.flags(), &cli.IntFlag{
		Name:        "depth",
		Aliases:     []string{"d"},
		Usage:       "Traversal depth (clamped to the calibrated bounds, 0 selects the default)",
		Destination: &depth,
	})

	return &cli.Command{
		Name:      "graph",
		Usage:     "Build the dependency graph and critical path of an asset",
		ArgsUsage: "<asset-id>",
		Flags:     flags,
		Action: analysis(&rt, func(ctx context.Context, c *cli.Command, uc *usecase.UseCases) (any, error) {
			id, err := argID(c, 0, "asset-id")
			if err != nil {
				return nil, err
			}
			return uc.Dependency.BuildDependencyGraph(ctx, id, uc.Config().Traversal.ClampDepth(depth))
		}),
	}
}

func cmdMetrics() *cli.Command {
	var rt runtime
	return &cli.Command{
		Name:      "metrics",
		Usage:     "Calculate single point of failure and cascade risk of an asset",
		ArgsUsage: "<asset-id>",
		Flags:     rt.flags(),
		Action: analysis(&rt, func(ctx context.Context, c *cli.Command, uc *usecase.UseCases) (any, error) {
			id, err := argID(c, 0, "asset-id")
			if err != nil {
				return nil, err
			}
			return uc.Dependency.CalculateRiskMetrics(ctx, id)
		}),
	}
}

func cmdImpact() *cli.Command {
	var rt runtime
	var scenario string

	flags := append(rt.flags(), &cli.StringFlag{
		Name:        "scenario",
		Aliases:     []string{"s"},
		Usage:       "Failure scenario (complete_failure, partial_degradation, performance_impact)",
		Value:       string(types.ScenarioCompleteFailure),
		Destination: &scenario,
	})

	return &cli.Command{
		Name:      "impact",
		Usage:     "Project the impact of a failure scenario on an asset's dependents",
		ArgsUsage: "<asset-id>",
		Flags:     flags,
		Action: analysis(&rt, func(ctx context.Context, c *cli.Command, uc *usecase.UseCases) (any, error) {
			id, err := argID(c, 0, "asset-id")
			if err != nil {
				return nil, err
			}
			return uc.Impact.AnalyzeImpactScenario(ctx, id, types.Scenario(scenario))
		}),
	}
}

func cmdNetwork() *cli.Command {
	var rt runtime
	return &cli.Command{
		Name:      "network",
		Usage:     "Build the network map induced by a set of assets",
		ArgsUsage: "<asset-id>...",
		Flags:     rt.flags(),
		Action: analysis(&rt, func(ctx context.Context, c *cli.Command, uc *usecase.UseCases) (any, error) {
			ids, err := argIDs(c, "asset-id")
			if err != nil {
				return nil, err
			}
			return uc.Impact.GetAssetNetworkMap(ctx, ids)
		}),
	}
}

// scoreOptions holds the methodology and organizational context flags
type scoreOptions struct {
	method       string
	sector       string
	regulations  []string
	market       string
	appetite     string
	businessUnit string
}

func (x *scoreOptions) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "method",
			Aliases:     []string{"m"},
			Usage:       "Methodology (simple_multiplication, weighted_average, quantitative, expert_judgment)",
			Category:    "Scoring",
			Destination: &x.method,
		},
		&cli.StringFlag{
			Name:        "sector",
			Usage:       "Industry sector (e.g. financial_services)",
			Category:    "Scoring",
			Destination: &x.sector,
		},
		&cli.StringSliceFlag{
			Name:        "regulation",
			Usage:       "Applicable regulation, repeatable",
			Category:    "Scoring",
			Destination: &x.regulations,
		},
		&cli.StringFlag{
			Name:        "market",
			Usage:       "Market conditions (volatile, recession, stable)",
			Category:    "Scoring",
			Destination: &x.market,
		},
		&cli.StringFlag{
			Name:        "appetite",
			Usage:       "Risk appetite (low, moderate, high)",
			Category:    "Scoring",
			Destination: &x.appetite,
		},
		&cli.StringFlag{
			Name:        "business-unit",
			Usage:       "Business unit used for incident history instead of the risk's own",
			Category:    "Scoring",
			Destination: &x.businessUnit,
		},
	}
}

func (x *scoreOptions) methodology() types.Methodology {
	return types.Methodology(x.method)
}

// riskContext returns nil when no context flag is set
func (x *scoreOptions) riskContext() (*model.RiskContext, error) {
	appetite, err := types.ParseRiskAppetite(x.appetite)
	if err != nil {
		return nil, goerr.Wrap(errInvalidArgument, err.Error())
	}
	if x.sector == "" && len(x.regulations) == 0 && x.market == "" && appetite == "" && x.businessUnit == "" {
		return nil, nil
	}
	return &model.RiskContext{
		IndustrySector:        x.sector,
		RegulatoryEnvironment: x.regulations,
		MarketConditions:      x.market,
		RiskAppetite:          appetite,
		BusinessUnit:          x.businessUnit,
	}, nil
}

func cmdAssess() *cli.Command {
	var rt runtime
	var opts scoreOptions

	return &cli.Command{
		Name:      "assess",
		Usage:     "Score a risk with its inherent ratings",
		ArgsUsage: "<risk-id>",
		Flags:     append(rt.flags(), opts.flags()...),
		Action: analysis(&rt, func(ctx context.Context, c *cli.Command, uc *usecase.UseCases) (any, error) {
			id, err := argID(c, 0, "risk-id")
			if err != nil {
				return nil, err
			}
			riskCtx, err := opts.riskContext()
			if err != nil {
				return nil, err
			}
			return uc.Scoring.AssessRisk(ctx, id, opts.methodology(), riskCtx)
		}),
	}
}

func cmdResidual() *cli.Command {
	var rt runtime
	var opts scoreOptions

	return &cli.Command{
		Name:      "residual",
		Usage:     "Score a risk with its residual ratings",
		ArgsUsage: "<risk-id>",
		Flags:     append(rt.flags(), opts.flags()...),
		Action: analysis(&rt, func(ctx context.Context, c *cli.Command, uc *usecase.UseCases) (any, error) {
			id, err := argID(c, 0, "risk-id")
			if err != nil {
				return nil, err
			}
			riskCtx, err := opts.riskContext()
			if err != nil {
				return nil, err
			}
			return uc.Scoring.CalculateResidualRisk(ctx, id, opts.methodology(), riskCtx)
		}),
	}
}

func cmdCompare() *cli.Command {
	var rt runtime
	return &cli.Command{
		Name:      "compare",
		Usage:     "Compare two risks under the default methodology",
		ArgsUsage: "<risk-id-a> <risk-id-b>",
		Flags:     rt.flags(),
		Action: analysis(&rt, func(ctx context.Context, c *cli.Command, uc *usecase.UseCases) (any, error) {
			a, err := argID(c, 0, "risk-id-a")
			if err != nil {
				return nil, err
			}
			b, err := argID(c, 1, "risk-id-b")
			if err != nil {
				return nil, err
			}
			return uc.Scoring.CompareRiskScores(ctx, a, b)
		}),
	}
}

func cmdBulk() *cli.Command {
	var rt runtime
	var opts scoreOptions

	return &cli.Command{
		Name:      "bulk",
		Usage:     "Score many risks; unknown ids and risks lacking input are skipped",
		ArgsUsage: "<risk-id>...",
		Flags:     append(rt.flags(), opts.flags()...),
		Action: analysis(&rt, func(ctx context.Context, c *cli.Command, uc *usecase.UseCases) (any, error) {
			ids, err := argIDs(c, "risk-id")
			if err != nil {
				return nil, err
			}
			riskCtx, err := opts.riskContext()
			if err != nil {
				return nil, err
			}
			return uc.Scoring.BulkAssessRisks(ctx, ids, opts.methodology(), riskCtx)
		}),
	}
}

func cmdCriticality() *cli.Command {
	var rt runtime
	return &cli.Command{
		Name:      "criticality",
		Usage:     "Score the business criticality of an asset",
		ArgsUsage: "<asset-id>",
		Flags:     rt.flags(),
		Action: analysis(&rt, func(ctx context.Context, c *cli.Command, uc *usecase.UseCases) (any, error) {
			id, err := argID(c, 0, "asset-id")
			if err != nil {
				return nil, err
			}
			return uc.Criticality.ScoreAsset(ctx, id)
		}),
	}
}
