package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/cli/config"
	"github.com/secmon-lab/riskgraph/pkg/usecase"
	"github.com/secmon-lab/riskgraph/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var rt runtime

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the calibration, the dataset and the stored graph",
		Flags:   rt.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			// Step 1: calibration and dataset parse, both validated on load
			cfg, err := rt.analytics.Configure()
			if err != nil {
				return goerr.Wrap(err, "calibration validation failed")
			}
			logger.Info("Calibration validation passed",
				"analytics_config", rt.analytics,
				"priority", cfg.Priority,
			)

			if rt.dataset.Path() == "" && rt.repo.Backend() != config.BackendFirestore {
				logger.Info("No dataset or persistent repository specified, skipping graph check")
				return nil
			}

			// Step 2: reference check over the loaded or stored graph
			uc, repo, err := rt.open(ctx)
			if err != nil {
				return err
			}
			defer closeRepository(ctx, repo)

			result, err := uc.ValidateRepository(ctx)
			if err != nil {
				return goerr.Wrap(err, "graph consistency check failed")
			}
			logValidation(ctx, result)

			if result.HasIssues() {
				return fmt.Errorf("graph consistency check found %d issue(s)", len(result.Issues))
			}

			logger.Info("Graph consistency check passed")
			return nil
		},
	}
}

func logValidation(ctx context.Context, result *usecase.ValidationResult) {
	logger := logging.From(ctx)
	for _, issue := range result.Issues {
		logger.Warn("Graph consistency issue found",
			"asset_id", issue.AssetID,
			"relationship_id", issue.RelationshipID,
			"risk_id", issue.RiskID,
			"message", issue.Message,
		)
	}
	logger.Info("Graph summary",
		"assets", result.Assets,
		"relationships", result.Relationships,
		"risks", result.Risks,
		"issues", len(result.Issues),
	)
}
