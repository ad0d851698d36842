package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

func runRiskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put then Get returns the stored risk", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		reviewed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		risk := &model.Risk{
			ID:                     7,
			Title:                  "Payment gateway outage",
			Description:            "Third party payment processor becomes unavailable",
			Category:               "operational",
			BusinessUnit:           "commerce",
			InherentLikelihood:     types.LikelihoodHigh,
			InherentImpact:         types.ImpactMajor,
			ResidualLikelihood:     types.LikelihoodMedium,
			FinancialImpactMin:     10000,
			FinancialImpactMax:     50000,
			RegulatoryRequirements: []string{"PCI-DSS"},
			AffectedAssets:         []int64{1, 2},
			Controls:               []string{"failover", "monitoring"},
			LastReviewDate:         reviewed,
		}
		gt.NoError(t, repo.Risk().Put(ctx, risk)).Required()

		got, err := repo.Risk().Get(ctx, 7)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal(risk.Title)
		gt.Value(t, got.Category).Equal(types.CategoryID("operational"))
		gt.Value(t, got.InherentLikelihood).Equal(types.LikelihoodHigh)
		gt.Value(t, got.ResidualLikelihood).Equal(types.LikelihoodMedium)
		gt.Value(t, got.ResidualImpact).Equal(types.Impact(""))
		gt.Value(t, got.FinancialImpactMax).Equal(50000.0)
		gt.Array(t, got.AffectedAssets).Length(2)
		gt.Array(t, got.Controls).Length(2)
		gt.B(t, got.LastReviewDate.Equal(reviewed)).True()
	})

	t.Run("Get returns not found for unknown risk", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Risk().Get(context.Background(), 404)
		gt.Value(t, err).NotNil()
		gt.B(t, errors.Is(err, model.ErrNotFound)).True()
	})

	t.Run("GetMany and List", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, id := range []int64{30, 10, 20} {
			gt.NoError(t, repo.Risk().Put(ctx, &model.Risk{
				ID:                 id,
				Title:              "risk",
				InherentLikelihood: types.LikelihoodLow,
				InherentImpact:     types.ImpactMinor,
			})).Required()
		}

		many, err := repo.Risk().GetMany(ctx, []int64{10, 99, 30})
		gt.NoError(t, err).Required()
		gt.Array(t, many).Length(2)

		all, err := repo.Risk().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(3).Required()
		gt.Value(t, all[0].ID).Equal(int64(10))
		gt.Value(t, all[1].ID).Equal(int64(20))
		gt.Value(t, all[2].ID).Equal(int64(30))
	})
}

func TestRiskRepository_Memory(t *testing.T) {
	runRiskRepositoryTest(t, newMemoryRepository)
}

func TestRiskRepository_Firestore(t *testing.T) {
	runRiskRepositoryTest(t, newFirestoreRepository)
}
