package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

func runAssetRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put then Get returns the stored asset", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		asset := &model.Asset{
			ID:                    10,
			Name:                  "orders-db",
			Type:                  types.AssetTypeDatabase,
			Criticality:           types.CriticalityCritical,
			Environment:           types.EnvironmentProduction,
			BusinessUnit:          "commerce",
			DataClassification:    types.DataClassificationConfidential,
			ComplianceFrameworks:  []string{"PCI-DSS", "SOX"},
			RecoveryTimeObjective: 30,
			FinancialValue:        250000,
			Tags:                  []string{"primary"},
		}
		gt.NoError(t, repo.Asset().Put(ctx, asset)).Required()

		got, err := repo.Asset().Get(ctx, 10)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("orders-db")
		gt.Value(t, got.Type).Equal(types.AssetTypeDatabase)
		gt.Value(t, got.Criticality).Equal(types.CriticalityCritical)
		gt.Value(t, got.DataClassification).Equal(types.DataClassificationConfidential)
		gt.Array(t, got.ComplianceFrameworks).Length(2)
		gt.Value(t, got.RecoveryTimeObjective).Equal(30)
		gt.Value(t, got.FinancialValue).Equal(250000.0)
	})

	t.Run("Get returns not found for unknown asset", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Asset().Get(context.Background(), 999)
		gt.Value(t, err).NotNil()
		gt.B(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("GetMany skips missing assets", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, id := range []int64{1, 2, 3} {
			gt.NoError(t, repo.Asset().Put(ctx, &model.Asset{ID: id, Name: "asset", Type: types.AssetTypeServer})).Required()
		}

		got, err := repo.Asset().GetMany(ctx, []int64{1, 3, 42})
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)
	})

	t.Run("List orders assets by ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, id := range []int64{3, 1, 2} {
			gt.NoError(t, repo.Asset().Put(ctx, &model.Asset{ID: id, Name: "asset", Type: types.AssetTypeServer})).Required()
		}

		got, err := repo.Asset().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(3).Required()
		gt.Value(t, got[0].ID).Equal(int64(1))
		gt.Value(t, got[2].ID).Equal(int64(3))
	})

	t.Run("Put replaces an existing asset", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Asset().Put(ctx, &model.Asset{ID: 5, Name: "before", Type: types.AssetTypeServer})).Required()
		gt.NoError(t, repo.Asset().Put(ctx, &model.Asset{ID: 5, Name: "after", Type: types.AssetTypeServer})).Required()

		got, err := repo.Asset().Get(ctx, 5)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("after")
	})
}

func TestAssetRepository_Memory(t *testing.T) {
	runAssetRepositoryTest(t, newMemoryRepository)
}

func TestAssetRepository_Firestore(t *testing.T) {
	runAssetRepositoryTest(t, newFirestoreRepository)
}
