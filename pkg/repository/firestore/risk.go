package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type riskDocument struct {
	ID           int64  `firestore:"id"`
	Title        string `firestore:"title"`
	Description  string `firestore:"description"`
	Category     string `firestore:"category"`
	BusinessUnit string `firestore:"business_unit"`
	ProcessArea  string `firestore:"process_area"`

	InherentLikelihood string `firestore:"inherent_likelihood"`
	InherentImpact     string `firestore:"inherent_impact"`
	ResidualLikelihood string `firestore:"residual_likelihood"`
	ResidualImpact     string `firestore:"residual_impact"`

	FinancialImpactMin float64 `firestore:"financial_impact_min"`
	FinancialImpactMax float64 `firestore:"financial_impact_max"`

	RegulatoryRequirements []string `firestore:"regulatory_requirements"`
	ExternalDependencies   []string `firestore:"external_dependencies"`
	AffectedAssets         []int64  `firestore:"affected_assets"`
	Controls               []string `firestore:"controls"`

	LastReviewDate time.Time `firestore:"last_review_date"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

func toRiskDocument(r *model.Risk) *riskDocument {
	return &riskDocument{
		ID:                     r.ID,
		Title:                  r.Title,
		Description:            r.Description,
		Category:               string(r.Category),
		BusinessUnit:           r.BusinessUnit,
		ProcessArea:            r.ProcessArea,
		InherentLikelihood:     string(r.InherentLikelihood),
		InherentImpact:         string(r.InherentImpact),
		ResidualLikelihood:     string(r.ResidualLikelihood),
		ResidualImpact:         string(r.ResidualImpact),
		FinancialImpactMin:     r.FinancialImpactMin,
		FinancialImpactMax:     r.FinancialImpactMax,
		RegulatoryRequirements: r.RegulatoryRequirements,
		ExternalDependencies:   r.ExternalDependencies,
		AffectedAssets:         r.AffectedAssets,
		Controls:               r.Controls,
		LastReviewDate:         r.LastReviewDate,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
}

func (d *riskDocument) toModel() *model.Risk {
	return &model.Risk{
		ID:                     d.ID,
		Title:                  d.Title,
		Description:            d.Description,
		Category:               types.CategoryID(d.Category),
		BusinessUnit:           d.BusinessUnit,
		ProcessArea:            d.ProcessArea,
		InherentLikelihood:     types.Likelihood(d.InherentLikelihood),
		InherentImpact:         types.Impact(d.InherentImpact),
		ResidualLikelihood:     types.Likelihood(d.ResidualLikelihood),
		ResidualImpact:         types.Impact(d.ResidualImpact),
		FinancialImpactMin:     d.FinancialImpactMin,
		FinancialImpactMax:     d.FinancialImpactMax,
		RegulatoryRequirements: d.RegulatoryRequirements,
		ExternalDependencies:   d.ExternalDependencies,
		AffectedAssets:         d.AffectedAssets,
		Controls:               d.Controls,
		LastReviewDate:         d.LastReviewDate,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

type riskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskRepository(client *firestore.Client) *riskRepository {
	return &riskRepository{client: client}
}

func (r *riskRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, CollectionRisks))
}

func (r *riskRepository) Get(ctx context.Context, id int64) (*model.Risk, error) {
	doc, err := r.collection().Doc(docID(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "risk not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}

	var riskDoc riskDocument
	if err := doc.DataTo(&riskDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("id", id))
	}

	return riskDoc.toModel(), nil
}

func (r *riskRepository) GetMany(ctx context.Context, ids []int64) ([]*model.Risk, error) {
	if len(ids) == 0 {
		return []*model.Risk{}, nil
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
		return nil, goerr.Wrap(err, "failed to get risks", goerr.V("count", len(refs)))
	}

	risks := make([]*model.Risk, 0, len(snapshots))
	for _, snap := range snapshots {
		if !snap.Exists() {
			continue
		}
		var riskDoc riskDocument
		if err := snap.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk", goerr.V("docID", snap.Ref.ID))
		}
		risks = append(risks, riskDoc.toModel())
	}

	return risks, nil
}

func (r *riskRepository) List(ctx context.Context) ([]*model.Risk, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var risks []*model.Risk
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks")
		}

		var riskDoc riskDocument
		if err := doc.DataTo(&riskDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal risk")
		}
		risks = append(risks, riskDoc.toModel())
	}

	sort.Slice(risks, func(i, j int) bool {
		return risks[i].ID < risks[j].ID
	})
	return risks, nil
}

func (r *riskRepository) Put(ctx context.Context, risk *model.Risk) error {
	if risk == nil {
		return goerr.New("risk is nil")
	}

	if _, err := r.collection().Doc(docID(risk.ID)).Set(ctx, toRiskDocument(risk)); err != nil {
		return goerr.Wrap(err, "failed to put risk", goerr.V("id", risk.ID))
	}
	return nil
}
