package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/model/config"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"github.com/secmon-lab/riskgraph/pkg/repository/memory"
	"github.com/secmon-lab/riskgraph/pkg/usecase"
)

func impactFixture(t *testing.T) *memory.Memory {
	t.Helper()
	repo := memory.New()
	putAssets(t, repo,
		&model.Asset{ID: 1, Name: "core-switch", Type: types.AssetTypeServer, Criticality: types.CriticalityHigh, Environment: types.EnvironmentProduction, BusinessUnit: "Retail"},
		&model.Asset{ID: 2, Name: "Orders Database", Type: types.AssetTypeDatabase, Criticality: types.CriticalityCritical, Environment: types.EnvironmentProduction},
		&model.Asset{ID: 3, Name: "storefront-web", Type: types.AssetTypeApplication, Criticality: types.CriticalityHigh, Environment: types.EnvironmentProduction},
		&model.Asset{ID: 4, Name: "reporting", Type: types.AssetTypeCloudService, Criticality: types.CriticalityLow, Environment: types.EnvironmentProduction},
	)
	putRelationships(t, repo,
		dependsOn(1, 2, 1, types.StrengthCritical),
		dependsOn(2, 3, 1, types.StrengthModerate),
		dependsOn(3, 4, 1, types.StrengthWeak),
	)
	return repo
}

func TestAnalyzeImpactScenario(t *testing.T) {
	t.Run("complete failure", func(t *testing.T) {
		uc := newTestUseCases(t, impactFixture(t))
		result, err := uc.Impact.AnalyzeImpactScenario(context.Background(), 1, types.ScenarioCompleteFailure)
		gt.NoError(t, err).Required()

		gt.Array(t, result.AffectedAssets).Length(3).Required()
		byID := map[int64]model.AssetImpact{}
		for _, a := range result.AffectedAssets {
			byID[a.AssetID] = a
		}

		db := byID[2]
		gt.Value(t, db.ImpactLevel).Equal(types.ImpactLevelSevere)
		gt.Value(t, db.EstimatedDowntimeMinutes).Equal(120)
		assertApprox(t, db.EstimatedRevenueImpact, 150000)

		web := byID[3]
		gt.Value(t, web.ImpactLevel).Equal(types.ImpactLevelModerate)
		gt.Value(t, web.EstimatedDowntimeMinutes).Equal(120)
		assertApprox(t, web.EstimatedRevenueImpact, 15000*2.0*120/60)

		reporting := byID[4]
		gt.Value(t, reporting.ImpactLevel).Equal(types.ImpactLevelMinor)
		gt.Value(t, reporting.EstimatedDowntimeMinutes).Equal(60)
		assertApprox(t, reporting.EstimatedRevenueImpact, 20000*0.5*60/60)

		gt.Value(t, result.EstimatedDowntimeMinutes).Equal(120)
		assertApprox(t, result.EstimatedRevenueImpact, 150000+60000+10000)

		gt.Array(t, result.AffectedServices).Length(2).Required()
		gt.Value(t, result.AffectedServices[0].AssetID).Equal(int64(3))
		gt.Value(t, result.AffectedServices[0].ImpactLevel).Equal(types.ServiceImpactHigh)
		gt.Value(t, result.AffectedServices[0].AffectedUsers).Equal(100)
		gt.Value(t, result.AffectedServices[1].ImpactLevel).Equal(types.ServiceImpactMedium)

		gt.Value(t, result.BusinessFunctions).Equal([]string{
			"Customer Services",
			"Data Management",
			"IT Operations",
			"Retail Operations",
			"Revenue Generation",
			"Web Services",
		})

		gt.Array(t, result.RecoverySteps).Length(9).Required()
		for i, step := range result.RecoverySteps {
			gt.Value(t, step.Order).Equal(i + 1)
		}
		gt.Value(t, result.RecoverySteps[0].Action).Equal("isolate")
		gt.Value(t, result.RecoverySteps[3].Action).Equal("notify_stakeholders")
		gt.Value(t, result.RecoverySteps[8].Action).Equal("post_incident_review")

		// (server base 120 + 15 * 3) * 1.5
		gt.Value(t, result.RecoveryTimeMinutes).Equal(247)
		assertApprox(t, result.ScenarioProbability, 0.05*0.8)
	})

	t.Run("complete failure without dependents omits notification steps", func(t *testing.T) {
		repo := memory.New()
		putAssets(t, repo, server(1, "standalone"))
		uc := newTestUseCases(t, repo)

		result, err := uc.Impact.AnalyzeImpactScenario(context.Background(), 1, types.ScenarioCompleteFailure)
		gt.NoError(t, err).Required()
		gt.Array(t, result.AffectedAssets).Length(0)
		gt.Array(t, result.RecoverySteps).Length(7)
		gt.Value(t, result.EstimatedDowntimeMinutes).Equal(0)
		gt.Value(t, result.RecoveryTimeMinutes).Equal(180)
	})

	t.Run("other scenarios produce no recovery steps", func(t *testing.T) {
		uc := newTestUseCases(t, impactFixture(t))
		result, err := uc.Impact.AnalyzeImpactScenario(context.Background(), 1, types.ScenarioPartialDegradation)
		gt.NoError(t, err).Required()
		gt.Array(t, result.RecoverySteps).Length(0)
		gt.Value(t, result.RecoveryTimeMinutes).Equal(165)
		assertApprox(t, result.ScenarioProbability, 0.15*0.8)
	})

	t.Run("unknown scenario degrades to unknown impact level", func(t *testing.T) {
		uc := newTestUseCases(t, impactFixture(t))
		result, err := uc.Impact.AnalyzeImpactScenario(context.Background(), 1, types.Scenario("meteor_strike"))
		gt.NoError(t, err).Required()
		for _, a := range result.AffectedAssets {
			gt.Value(t, a.ImpactLevel).Equal(types.ImpactLevelUnknown)
		}
		gt.Value(t, result.BusinessFunctions).Equal([]string{"Customer Services", "Retail Operations", "Revenue Generation"})
		assertApprox(t, result.ScenarioProbability, 0.10*0.8)
	})

	t.Run("missing asset is not found", func(t *testing.T) {
		uc := newTestUseCases(t, memory.New())
		_, err := uc.Impact.AnalyzeImpactScenario(context.Background(), 5, types.ScenarioCompleteFailure)
		gt.Error(t, err).Is(usecase.ErrAssetNotFound)
	})
}

func TestImpactOutputsAreBounded(t *testing.T) {
	cfg := config.Default()
	scenarios := append(types.KnownScenarios(), types.Scenario("unrecognized"))
	environments := append(types.AllEnvironments(), types.Environment("lab"))

	for _, scenario := range scenarios {
		for _, env := range environments {
			t.Run(fmt.Sprintf("%s/%s", scenario, env), func(t *testing.T) {
				root := &model.Asset{ID: 1, Name: "root", Type: types.AssetTypeServer, Environment: env}
				graph := &model.DependencyGraph{RootAssetID: 1}
				for i, strength := range types.AllRelationshipStrengths() {
					for j, crit := range types.AllCriticalities() {
						graph.Dependents = append(graph.Dependents, model.DependencyNode{
							AssetID:              int64(100 + i*10 + j),
							Name:                 "dependent",
							Type:                 types.AssetTypeDatabase,
							Criticality:          crit,
							Level:                1,
							RelationshipStrength: strength,
						})
					}
				}

				result := usecase.ProjectImpact(cfg, root, graph, scenario)
				gt.B(t, result.ScenarioProbability >= 0 && result.ScenarioProbability <= 1).True()
				gt.B(t, result.EstimatedRevenueImpact >= 0).True()
				gt.B(t, result.RecoveryTimeMinutes >= 0).True()
				for _, a := range result.AffectedAssets {
					gt.B(t, a.EstimatedDowntimeMinutes >= 0).True()
					gt.B(t, a.EstimatedRevenueImpact >= 0).True()
				}
			})
		}
	}
}

func TestGetAssetNetworkMap(t *testing.T) {
	t.Run("induced subgraph and density", func(t *testing.T) {
		repo := memory.New()
		putAssets(t, repo, server(1, "a"), server(2, "b"), server(3, "c"), server(4, "outside"))
		putRelationships(t, repo,
			dependsOn(1, 1, 2, types.StrengthStrong),
			&model.AssetRelationship{ID: 2, SourceAssetID: 2, TargetAssetID: 3, Type: types.RelationshipCommunicatesWith, Strength: types.StrengthWeak, IsActive: true},
			dependsOn(3, 3, 4, types.StrengthStrong),
		)

		uc := newTestUseCases(t, repo)
		result, err := uc.Impact.GetAssetNetworkMap(context.Background(), []int64{3, 1, 2, 404})
		gt.NoError(t, err).Required()

		gt.Array(t, result.Nodes).Length(3).Required()
		gt.Value(t, result.Nodes[0].AssetID).Equal(int64(1))
		gt.Array(t, result.Edges).Length(2)
		assertApprox(t, result.Density, 2.0/6.0)
	})

	t.Run("density is zero for fewer than two nodes", func(t *testing.T) {
		repo := memory.New()
		putAssets(t, repo, server(1, "a"))
		uc := newTestUseCases(t, repo)

		for _, ids := range [][]int64{{}, {1}} {
			result, err := uc.Impact.GetAssetNetworkMap(context.Background(), ids)
			gt.NoError(t, err).Required()
			gt.Value(t, result.Density).Equal(0.0)
		}
	})

	t.Run("rejects more than the maximum asset count", func(t *testing.T) {
		ids := make([]int64, usecase.MaxNetworkMapAssets+1)
		for i := range ids {
			ids[i] = int64(i + 1)
		}
		uc := newTestUseCases(t, memory.New())
		_, err := uc.Impact.GetAssetNetworkMap(context.Background(), ids)
		gt.Error(t, err).Is(usecase.ErrTooManyAssets)
	})
}

func TestBusinessFunctionsSorted(t *testing.T) {
	root := &model.Asset{ID: 1, Name: "web-frontend", BusinessUnit: "Wholesale", Environment: types.EnvironmentProduction}
	affected := []model.AssetImpact{
		{AssetID: 2, Name: "Web-Cache", ImpactLevel: types.ImpactLevelSevere},
		{AssetID: 3, Name: "billing-database", ImpactLevel: types.ImpactLevelModerate},
		{AssetID: 4, Name: "web-archive", ImpactLevel: types.ImpactLevelMinor},
	}

	got := usecase.BusinessFunctions(root, affected)
	gt.Value(t, got).Equal([]string{
		"Customer Services",
		"Data Management",
		"IT Operations",
		"Revenue Generation",
		"Web Services",
		"Wholesale Operations",
	})
}
