package usecase_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"github.com/secmon-lab/riskgraph/pkg/repository/memory"
	"github.com/secmon-lab/riskgraph/pkg/usecase"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestUseCases(t *testing.T, repo *memory.Memory, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()
	opts = append([]usecase.Option{usecase.WithClock(func() time.Time { return fixedNow })}, opts...)
	return usecase.New(repo, opts...)
}

func putAssets(t *testing.T, repo *memory.Memory, assets ...*model.Asset) {
	t.Helper()
	for _, a := range assets {
		gt.NoError(t, repo.Asset().Put(context.Background(), a)).Required()
	}
}

func putRelationships(t *testing.T, repo *memory.Memory, rels ...*model.AssetRelationship) {
	t.Helper()
	for _, r := range rels {
		gt.NoError(t, repo.Relationship().Put(context.Background(), r)).Required()
	}
}

func server(id int64, name string) *model.Asset {
	return &model.Asset{
		ID:          id,
		Name:        name,
		Type:        types.AssetTypeServer,
		Criticality: types.CriticalityMedium,
		Environment: types.EnvironmentStaging,
	}
}

func dependsOn(id, source, target int64, strength types.RelationshipStrength) *model.AssetRelationship {
	return &model.AssetRelationship{
		ID:            id,
		SourceAssetID: source,
		TargetAssetID: target,
		Type:          types.RelationshipDependsOn,
		Strength:      strength,
		IsActive:      true,
	}
}

func assertApprox(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %v, got %v", want, got)
	}
}
