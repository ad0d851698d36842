package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

func runAssessmentRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("PutAssessment assigns an ID when empty", func(t *testing.T) {
		repo := newRepo(t)
		a := &model.Assessment{RiskID: 1, OverallScore: 5, AssessedAt: base}
		gt.NoError(t, repo.Assessment().PutAssessment(context.Background(), a)).Required()
		gt.Value(t, a.ID).NotEqual(model.AssessmentID(""))
	})

	t.Run("GetLatestValidated returns the newest validated assessment", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i, validated := range []bool{true, true, false} {
			gt.NoError(t, repo.Assessment().PutAssessment(ctx, &model.Assessment{
				RiskID:       1,
				Likelihood:   types.LikelihoodMedium,
				Impact:       types.ImpactModerate,
				OverallScore: float64(i + 1),
				QualityScore: 0.8,
				DataSources:  []string{"audit"},
				Validated:    validated,
				AssessedAt:   base.Add(time.Duration(i) * 24 * time.Hour),
			})).Required()
		}

		got, err := repo.Assessment().GetLatestValidated(ctx, 1)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil().Required()
		gt.Value(t, got.OverallScore).Equal(2.0)
		gt.Array(t, got.DataSources).Length(1)
	})

	t.Run("GetLatestValidated returns nil when none exists", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.Assessment().GetLatestValidated(context.Background(), 42)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("ListRecent returns the latest assessments oldest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := range 7 {
			gt.NoError(t, repo.Assessment().PutAssessment(ctx, &model.Assessment{
				RiskID:       2,
				OverallScore: float64(i),
				AssessedAt:   base.Add(time.Duration(i) * time.Hour),
			})).Required()
		}
		gt.NoError(t, repo.Assessment().PutAssessment(ctx, &model.Assessment{
			RiskID: 3, OverallScore: 100, AssessedAt: base,
		})).Required()

		got, err := repo.Assessment().ListRecent(ctx, 2, 5)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(5).Required()
		gt.Value(t, got[0].OverallScore).Equal(2.0)
		gt.Value(t, got[4].OverallScore).Equal(6.0)
	})

	t.Run("CountIncidents filters by category, business unit and time", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		incidents := []*model.Incident{
			{Title: "a", Category: "operational", BusinessUnit: "commerce", OccurredAt: base.Add(-10 * 24 * time.Hour)},
			{Title: "b", Category: "operational", BusinessUnit: "commerce", OccurredAt: base.Add(-400 * 24 * time.Hour)},
			{Title: "c", Category: "operational", BusinessUnit: "logistics", OccurredAt: base.Add(-5 * 24 * time.Hour)},
			{Title: "d", Category: "security", BusinessUnit: "commerce", OccurredAt: base.Add(-1 * 24 * time.Hour)},
		}
		for _, inc := range incidents {
			gt.NoError(t, repo.Assessment().PutIncident(ctx, inc)).Required()
		}

		since := base.Add(-365 * 24 * time.Hour)
		count, err := repo.Assessment().CountIncidents(ctx, model.IncidentQuery{
			Category: "operational", BusinessUnit: "commerce", Since: since,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(1)

		count, err = repo.Assessment().CountIncidents(ctx, model.IncidentQuery{Category: "operational", Since: since})
		gt.NoError(t, err).Required()
		gt.Value(t, count).Equal(2)
	})
}

func TestAssessmentRepository_Memory(t *testing.T) {
	runAssessmentRepositoryTest(t, newMemoryRepository)
}

func TestAssessmentRepository_Firestore(t *testing.T) {
	runAssessmentRepositoryTest(t, newFirestoreRepository)
}
