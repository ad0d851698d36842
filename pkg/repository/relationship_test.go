package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

func seedRelationships(t *testing.T, repo interfaces.Repository) {
	t.Helper()
	ctx := context.Background()

	rels := []*model.AssetRelationship{
		{ID: 1, SourceAssetID: 1, TargetAssetID: 2, Type: types.RelationshipDependsOn, Strength: types.StrengthCritical, IsActive: true},
		{ID: 2, SourceAssetID: 1, TargetAssetID: 3, Type: types.RelationshipCommunicatesWith, Strength: types.StrengthWeak, IsActive: true},
		{ID: 3, SourceAssetID: 1, TargetAssetID: 4, Type: types.RelationshipHostedOn, Strength: types.StrengthStrong, IsActive: false},
		{ID: 4, SourceAssetID: 5, TargetAssetID: 2, Type: types.RelationshipDependsOn, Strength: types.StrengthModerate, IsActive: true},
		{ID: 5, SourceAssetID: 2, TargetAssetID: 3, Type: types.RelationshipHostedOn, Strength: types.StrengthCritical, IsActive: true},
	}
	for _, rel := range rels {
		gt.NoError(t, repo.Relationship().Put(ctx, rel)).Required()
	}
}

func runRelationshipRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("ListBySource returns all outgoing relationships without filter", func(t *testing.T) {
		repo := newRepo(t)
		seedRelationships(t, repo)

		got, err := repo.Relationship().ListBySource(context.Background(), 1, model.RelationshipFilter{})
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(3).Required()
		gt.Value(t, got[0].ID).Equal(int64(1))
		gt.Value(t, got[1].ID).Equal(int64(2))
		gt.Value(t, got[2].ID).Equal(int64(3))
	})

	t.Run("ListBySource applies active and type filters", func(t *testing.T) {
		repo := newRepo(t)
		seedRelationships(t, repo)

		filter := model.RelationshipFilter{
			ActiveOnly: true,
			Types:      []types.RelationshipType{types.RelationshipDependsOn, types.RelationshipHostedOn},
		}
		got, err := repo.Relationship().ListBySource(context.Background(), 1, filter)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1).Required()
		gt.Value(t, got[0].TargetAssetID).Equal(int64(2))
	})

	t.Run("ListByTarget returns incoming relationships", func(t *testing.T) {
		repo := newRepo(t)
		seedRelationships(t, repo)

		got, err := repo.Relationship().ListByTarget(context.Background(), 2, model.RelationshipFilter{ActiveOnly: true})
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2).Required()
		gt.Value(t, got[0].SourceAssetID).Equal(int64(1))
		gt.Value(t, got[1].SourceAssetID).Equal(int64(5))
	})

	t.Run("ListAmong keeps only edges with both ends in the set", func(t *testing.T) {
		repo := newRepo(t)
		seedRelationships(t, repo)

		got, err := repo.Relationship().ListAmong(context.Background(), []int64{1, 2, 3}, model.RelationshipFilter{ActiveOnly: true})
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(3).Required()
		gt.Value(t, got[0].ID).Equal(int64(1))
		gt.Value(t, got[1].ID).Equal(int64(2))
		gt.Value(t, got[2].ID).Equal(int64(5))
	})

	t.Run("ListActiveCritical returns active critical relationships", func(t *testing.T) {
		repo := newRepo(t)
		seedRelationships(t, repo)

		got, err := repo.Relationship().ListActiveCritical(context.Background())
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)
		for _, rel := range got {
			gt.Value(t, rel.Strength).Equal(types.StrengthCritical)
			gt.B(t, rel.IsActive).True()
		}
	})

	t.Run("Put moves a relationship to its new endpoints", func(t *testing.T) {
		repo := newRepo(t)
		seedRelationships(t, repo)
		ctx := context.Background()

		gt.NoError(t, repo.Relationship().Put(ctx, &model.AssetRelationship{
			ID: 1, SourceAssetID: 7, TargetAssetID: 2, Type: types.RelationshipDependsOn, Strength: types.StrengthCritical, IsActive: true,
		})).Required()

		fromOld, err := repo.Relationship().ListBySource(ctx, 1, model.RelationshipFilter{})
		gt.NoError(t, err).Required()
		gt.Array(t, fromOld).Length(2)

		fromNew, err := repo.Relationship().ListBySource(ctx, 7, model.RelationshipFilter{})
		gt.NoError(t, err).Required()
		gt.Array(t, fromNew).Length(1)
	})
}

func TestRelationshipRepository_Memory(t *testing.T) {
	runRelationshipRepositoryTest(t, newMemoryRepository)
}

func TestRelationshipRepository_Firestore(t *testing.T) {
	runRelationshipRepositoryTest(t, newFirestoreRepository)
}
