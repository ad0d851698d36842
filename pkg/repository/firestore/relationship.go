package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"google.golang.org/api/iterator"
)

// maxInQueryValues is the Firestore limit of values in an "in" filter
const maxInQueryValues = 30

type relationshipDocument struct {
	ID               int64   `firestore:"id"`
	SourceAssetID    int64   `firestore:"source_id"`
	TargetAssetID    int64   `firestore:"target_id"`
	Type             string  `firestore:"type"`
	Strength         string  `firestore:"strength"`
	ImpactPercentage float64 `firestore:"impact_percentage"`
	IsActive         bool    `firestore:"is_active"`
	Description      string  `firestore:"description"`
}

func toRelationshipDocument(r *model.AssetRelationship) *relationshipDocument {
	return &relationshipDocument{
		ID:               r.ID,
		SourceAssetID:    r.SourceAssetID,
		TargetAssetID:    r.TargetAssetID,
		Type:             string(r.Type),
		Strength:         string(r.Strength),
		ImpactPercentage: r.ImpactPercentage,
		IsActive:         r.IsActive,
		Description:      r.Description,
	}
}

func (d *relationshipDocument) toModel() *model.AssetRelationship {
	return &model.AssetRelationship{
		ID:               d.ID,
		SourceAssetID:    d.SourceAssetID,
		TargetAssetID:    d.TargetAssetID,
		Type:             types.RelationshipType(d.Type),
		Strength:         types.RelationshipStrength(d.Strength),
		ImpactPercentage: d.ImpactPercentage,
		IsActive:         d.IsActive,
		Description:      d.Description,
	}
}

type relationshipRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRelationshipRepository(client *firestore.Client) *relationshipRepository {
	return &relationshipRepository{client: client}
}

func (r *relationshipRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, CollectionRelationships))
}

// run executes a query and keeps the relationships accepted by match, ordered by ID
func (r *relationshipRepository) run(ctx context.Context, query firestore.Query, match func(*model.AssetRelationship) bool) ([]*model.AssetRelationship, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var rels []*model.AssetRelationship
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate relationships")
		}

		var relDoc relationshipDocument
		if err := doc.DataTo(&relDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal relationship", goerr.V("docID", doc.Ref.ID))
		}

		rel := relDoc.toModel()
		if match(rel) {
			rels = append(rels, rel)
		}
	}

	sort.Slice(rels, func(i, j int) bool {
		return rels[i].ID < rels[j].ID
	})
	return rels, nil
}

func withActive(query firestore.Query, filter model.RelationshipFilter) firestore.Query {
	if filter.ActiveOnly {
		return query.Where("is_active", "==", true)
	}
	return query
}

func (r *relationshipRepository) ListBySource(ctx context.Context, assetID int64, filter model.RelationshipFilter) ([]*model.AssetRelationship, error) {
	query := withActive(r.collection().Where("source_id", "==", assetID), filter)
	rels, err := r.run(ctx, query, filter.Match)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list relationships by source", goerr.V("assetID", assetID))
	}
	return rels, nil
}

func (r *relationshipRepository) ListByTarget(ctx context.Context, assetID int64, filter model.RelationshipFilter) ([]*model.AssetRelationship, error) {
	query := withActive(r.collection().Where("target_id", "==", assetID), filter)
	rels, err := r.run(ctx, query, filter.Match)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list relationships by target", goerr.V("assetID", assetID))
	}
	return rels, nil
}

func (r *relationshipRepository) ListAmong(ctx context.Context, assetIDs []int64, filter model.RelationshipFilter) ([]*model.AssetRelationship, error) {
	members := make(map[int64]bool, len(assetIDs))
	var unique []int64
	for _, id := range assetIDs {
		if !members[id] {
			members[id] = true
			unique = append(unique, id)
		}
	}

	var result []*model.AssetRelationship
	for start := 0; start < len(unique); start += maxInQueryValues {
		end := min(start+maxInQueryValues, len(unique))

		query := withActive(r.collection().Where("source_id", "in", unique[start:end]), filter)
		rels, err := r.run(ctx, query, func(rel *model.AssetRelationship) bool {
			return members[rel.TargetAssetID] && filter.Match(rel)
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list relationships among assets", goerr.V("count", len(unique)))
		}
		result = append(result, rels...)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *relationshipRepository) ListActiveCritical(ctx context.Context) ([]*model.AssetRelationship, error) {
	query := r.collection().
		Where("strength", "==", string(types.StrengthCritical)).
		Where("is_active", "==", true)

	rels, err := r.run(ctx, query, func(*model.AssetRelationship) bool { return true })
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list critical relationships")
	}
	return rels, nil
}

func (r *relationshipRepository) Put(ctx context.Context, rel *model.AssetRelationship) error {
	if rel == nil {
		return goerr.New("relationship is nil")
	}

	if _, err := r.collection().Doc(docID(rel.ID)).Set(ctx, toRelationshipDocument(rel)); err != nil {
		return goerr.Wrap(err, "failed to put relationship", goerr.V("id", rel.ID))
	}
	return nil
}
