package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/cli"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

const dataset = `
[[asset]]
id = 1
name = "storefront"
type = "application"
criticality = "high"
environment = "production"

[[asset]]
id = 2
name = "orders-db"
type = "database"
criticality = "critical"
environment = "production"
data_classification = "restricted"

[[relationship]]
id = 10
source = 1
target = 2
type = "depends_on"
strength = "critical"

[[risk]]
id = 100
title = "Database outage"
category = "operational"
inherent_likelihood = "medium"
inherent_impact = "major"
financial_impact_min = 10000
financial_impact_max = 50000
affected_assets = [2]
`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func runJSON(t *testing.T, out any, args ...string) {
	t.Helper()
	var buf bytes.Buffer
	args = append([]string{"riskgraph", "--log-level", "error"}, args...)
	gt.NoError(t, cli.RunWithWriter(context.Background(), args, &buf)).Required()
	gt.NoError(t, json.Unmarshal(buf.Bytes(), out)).Required()
}

func TestGraphCommand(t *testing.T) {
	path := writeDataset(t, dataset)

	var graph model.DependencyGraph
	runJSON(t, &graph, "graph", "--dataset", path, "--format", "json", "--depth", "3", "1")

	gt.Value(t, graph.RootAssetID).Equal(int64(1))
	gt.Value(t, graph.MaxDepth).Equal(3)
	gt.Array(t, graph.Dependencies).Length(1).Required()
	gt.Value(t, graph.Dependencies[0].AssetID).Equal(int64(2))
	gt.Value(t, graph.CriticalPath).Equal([]int64{1, 2})
}

func TestAssessCommand(t *testing.T) {
	path := writeDataset(t, dataset)

	var score model.RiskScore
	runJSON(t, &score, "assess", "--dataset", path, "--format", "json", "--method", "quantitative", "100")

	gt.Value(t, score.RiskID).Equal(int64(100))
	gt.Value(t, score.Methodology).Equal(types.MethodologyQuantitative)
	gt.B(t, score.OverallScore >= 0 && score.OverallScore <= 10).True()
}

func TestCriticalityCommand(t *testing.T) {
	path := writeDataset(t, dataset)

	var score model.CriticalityScore
	runJSON(t, &score, "criticality", "--dataset", path, "--format", "json", "2")

	gt.Value(t, score.AssetID).Equal(int64(2))
	gt.Value(t, score.AssetName).Equal("orders-db")
	gt.Value(t, score.Factors.DataSensitivity).Equal(10.0)
	gt.B(t, len(score.Recommendations) > 0).True()
}

func TestTextOutput(t *testing.T) {
	path := writeDataset(t, dataset)

	var buf bytes.Buffer
	args := []string{"riskgraph", "--log-level", "error", "metrics", "--dataset", path, "2"}
	gt.NoError(t, cli.RunWithWriter(context.Background(), args, &buf)).Required()
	gt.String(t, buf.String()).Contains("2")
}

func TestCommandErrors(t *testing.T) {
	path := writeDataset(t, dataset)
	ctx := context.Background()

	t.Run("unsupported format", func(t *testing.T) {
		args := []string{"riskgraph", "--log-level", "error", "graph", "--dataset", path, "--format", "xml", "1"}
		gt.Error(t, cli.RunWithWriter(ctx, args, &bytes.Buffer{})).Is(cli.ErrInvalidArgument)
	})

	t.Run("non numeric id", func(t *testing.T) {
		args := []string{"riskgraph", "--log-level", "error", "graph", "--dataset", path, "abc"}
		gt.Error(t, cli.RunWithWriter(ctx, args, &bytes.Buffer{})).Is(cli.ErrInvalidArgument)
	})

	t.Run("missing id", func(t *testing.T) {
		args := []string{"riskgraph", "--log-level", "error", "criticality", "--dataset", path}
		gt.Error(t, cli.RunWithWriter(ctx, args, &bytes.Buffer{})).Is(cli.ErrInvalidArgument)
	})

	t.Run("import requires dataset", func(t *testing.T) {
		args := []string{"riskgraph", "--log-level", "error", "import"}
		gt.Error(t, cli.RunWithWriter(ctx, args, &bytes.Buffer{})).Is(cli.ErrInvalidArgument)
	})
}

func TestValidateCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("consistent dataset", func(t *testing.T) {
		path := writeDataset(t, dataset)
		args := []string{"riskgraph", "--log-level", "error", "validate", "--dataset", path}
		gt.NoError(t, cli.RunWithWriter(ctx, args, &bytes.Buffer{}))
	})

	t.Run("dangling relationship", func(t *testing.T) {
		path := writeDataset(t, dataset+`
[[relationship]]
id = 11
source = 2
target = 42
type = "hosted_on"
strength = "strong"
`)
		args := []string{"riskgraph", "--log-level", "error", "validate", "--dataset", path}
		gt.Error(t, cli.RunWithWriter(ctx, args, &bytes.Buffer{}))
	})

	t.Run("calibration only", func(t *testing.T) {
		args := []string{"riskgraph", "--log-level", "error", "validate"}
		gt.NoError(t, cli.RunWithWriter(ctx, args, &bytes.Buffer{}))
	})
}
