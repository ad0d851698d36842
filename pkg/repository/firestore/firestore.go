package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
)

// ErrNotFound is returned (wrapped) when a document does not exist
var ErrNotFound = model.ErrNotFound

// Collection names without prefix
const (
	CollectionAssets        = "assets"
	CollectionRelationships = "relationships"
	CollectionRisks         = "risks"
	CollectionAssessments   = "assessments"
	CollectionIncidents     = "incidents"
)

type Firestore struct {
	client       *firestore.Client
	asset        *assetRepository
	relationship *relationshipRepository
	risk         *riskRepository
	assessment   *assessmentRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.asset.collectionPrefix = prefix
		f.relationship.collectionPrefix = prefix
		f.risk.collectionPrefix = prefix
		f.assessment.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		asset:        newAssetRepository(client),
		relationship: newRelationshipRepository(client),
		risk:         newRiskRepository(client),
		assessment:   newAssessmentRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Asset() interfaces.AssetRepository {
	return f.asset
}

func (f *Firestore) Relationship() interfaces.RelationshipRepository {
	return f.relationship
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) Assessment() interfaces.AssessmentRepository {
	return f.assessment
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// CollectionName returns the collection name with the optional prefix applied
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
