package firestore

import (
	"context"
	"sort"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type assetDocument struct {
	ID                    int64    `firestore:"id"`
	Name                  string   `firestore:"name"`
	Type                  string   `firestore:"type"`
	Criticality           string   `firestore:"criticality"`
	Environment           string   `firestore:"environment"`
	BusinessUnit          string   `firestore:"business_unit"`
	Description           string   `firestore:"description"`
	DataClassification    string   `firestore:"data_classification"`
	ComplianceFrameworks  []string `firestore:"compliance_frameworks"`
	RecoveryTimeObjective int      `firestore:"recovery_time_objective"`
	FinancialValue        float64  `firestore:"financial_value"`
	Tags                  []string `firestore:"tags"`
}

func toAssetDocument(a *model.Asset) *assetDocument {
	return &assetDocument{
		ID:                    a.ID,
		Name:                  a.Name,
		Type:                  string(a.Type),
		Criticality:           string(a.Criticality),
		Environment:           string(a.Environment),
		BusinessUnit:          a.BusinessUnit,
		Description:           a.Description,
		DataClassification:    string(a.DataClassification),
		ComplianceFrameworks:  a.ComplianceFrameworks,
		RecoveryTimeObjective: a.RecoveryTimeObjective,
		FinancialValue:        a.FinancialValue,
		Tags:                  a.Tags,
	}
}

func (d *assetDocument) toModel() *model.Asset {
	return &model.Asset{
		ID:                    d.ID,
		Name:                  d.Name,
		Type:                  types.AssetType(d.Type),
		Criticality:           types.Criticality(d.Criticality),
		Environment:           types.Environment(d.Environment),
		BusinessUnit:          d.BusinessUnit,
		Description:           d.Description,
		DataClassification:    types.DataClassification(d.DataClassification),
		ComplianceFrameworks:  d.ComplianceFrameworks,
		RecoveryTimeObjective: d.RecoveryTimeObjective,
		FinancialValue:        d.FinancialValue,
		Tags:                  d.Tags,
	}
}

type assetRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAssetRepository(client *firestore.Client) *assetRepository {
	return &assetRepository{client: client}
}

func (r *assetRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, CollectionAssets))
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (r *assetRepository) Get(ctx context.Context, id int64) (*model.Asset, error) {
	doc, err := r.collection().Doc(docID(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "asset not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get asset", goerr.V("id", id))
	}

	var assetDoc assetDocument
	if err := doc.DataTo(&assetDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal asset", goerr.V("id", id))
	}

	return assetDoc.toModel(), nil
}

func (r *assetRepository) GetMany(ctx context.Context, ids []int64) ([]*model.Asset, error) {
	if len(ids) == 0 {
		return []*model.Asset{}, nil
	}

	seen := make(map[int64]bool, len(ids))
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		refs = append(refs, r.collection().Doc(docID(id)))
	}

	snapshots, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get assets", goerr.V("count", len(refs)))
	}

	assets := make([]*model.Asset, 0, len(snapshots))
	for _, snap := range snapshots {
		if !snap.Exists() {
			continue
		}
		var assetDoc assetDocument
		if err := snap.DataTo(&assetDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal asset", goerr.V("docID", snap.Ref.ID))
		}
		assets = append(assets, assetDoc.toModel())
	}

	return assets, nil
}

func (r *assetRepository) List(ctx context.Context) ([]*model.Asset, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var assets []*model.Asset
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate assets")
		}

		var assetDoc assetDocument
		if err := doc.DataTo(&assetDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal asset")
		}
		assets = append(assets, assetDoc.toModel())
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].ID < assets[j].ID
	})
	return assets, nil
}

func (r *assetRepository) Put(ctx context.Context, asset *model.Asset) error {
	if asset == nil {
		return goerr.New("asset is nil")
	}

	if _, err := r.collection().Doc(docID(asset.ID)).Set(ctx, toAssetDocument(asset)); err != nil {
		return goerr.Wrap(err, "failed to put asset", goerr.V("id", asset.ID))
	}
	return nil
}
