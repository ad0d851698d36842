package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"google.golang.org/api/iterator"
)

type assessmentDocument struct {
	ID           string    `firestore:"id"`
	RiskID       int64     `firestore:"risk_id"`
	Likelihood   string    `firestore:"likelihood"`
	Impact       string    `firestore:"impact"`
	OverallScore float64   `firestore:"overall_score"`
	QualityScore float64   `firestore:"quality_score"`
	DataSources  []string  `firestore:"data_sources"`
	Validated    bool      `firestore:"validated"`
	AssessedAt   time.Time `firestore:"assessed_at"`
}

func (d *assessmentDocument) toModel() *model.Assessment {
	return &model.Assessment{
		ID:           model.AssessmentID(d.ID),
		RiskID:       d.RiskID,
		Likelihood:   types.Likelihood(d.Likelihood),
		Impact:       types.Impact(d.Impact),
		OverallScore: d.OverallScore,
		QualityScore: d.QualityScore,
		DataSources:  d.DataSources,
		Validated:    d.Validated,
		AssessedAt:   d.AssessedAt,
	}
}

type incidentDocument struct {
	ID           string    `firestore:"id"`
	Title        string    `firestore:"title"`
	Category     string    `firestore:"category"`
	BusinessUnit string    `firestore:"business_unit"`
	OccurredAt   time.Time `firestore:"occurred_at"`
}

type assessmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAssessmentRepository(client *firestore.Client) *assessmentRepository {
	return &assessmentRepository{client: client}
}

func (r *assessmentRepository) assessments() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, CollectionAssessments))
}

func (r *assessmentRepository) incidents() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, CollectionIncidents))
}

func (r *assessmentRepository) query(ctx context.Context, q firestore.Query) ([]*model.Assessment, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var result []*model.Assessment
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate assessments")
		}

		var assessmentDoc assessmentDocument
		if err := doc.DataTo(&assessmentDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal assessment", goerr.V("docID", doc.Ref.ID))
		}
		result = append(result, assessmentDoc.toModel())
	}
	return result, nil
}

func (r *assessmentRepository) GetLatestValidated(ctx context.Context, riskID int64) (*model.Assessment, error) {
	q := r.assessments().
		Where("risk_id", "==", riskID).
		Where("validated", "==", true).
		OrderBy("assessed_at", firestore.Desc).
		Limit(1)

	result, err := r.query(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get latest validated assessment", goerr.V("riskID", riskID))
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result[0], nil
}

func (r *assessmentRepository) ListRecent(ctx context.Context, riskID int64, limit int) ([]*model.Assessment, error) {
	q := r.assessments().
		Where("risk_id", "==", riskID).
		OrderBy("assessed_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	result, err := r.query(ctx, q)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list recent assessments", goerr.V("riskID", riskID))
	}

	// Query returns newest first
	slices.Reverse(result)
	return result, nil
}

func (r *assessmentRepository) CountIncidents(ctx context.Context, query model.IncidentQuery) (int, error) {
	q := r.incidents().Query
	if query.Category != "" {
		q = q.Where("category", "==", string(query.Category))
	}
	if query.BusinessUnit != "" {
		q = q.Where("business_unit", "==", query.BusinessUnit)
	}
	q = q.Where("occurred_at", ">=", query.Since)

	iter := q.Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count incidents",
				goerr.V("category", query.Category), goerr.V("businessUnit", query.BusinessUnit))
		}
		count++
	}
	return count, nil
}

func (r *assessmentRepository) PutAssessment(ctx context.Context, assessment *model.Assessment) error {
	if assessment == nil {
		return goerr.New("assessment is nil")
	}
	if assessment.ID == "" {
		assessment.ID = model.NewAssessmentID()
	}

	doc := &assessmentDocument{
		ID:           string(assessment.ID),
		RiskID:       assessment.RiskID,
		Likelihood:   string(assessment.Likelihood),
		Impact:       string(assessment.Impact),
		OverallScore: assessment.OverallScore,
		QualityScore: assessment.QualityScore,
		DataSources:  assessment.DataSources,
		Validated:    assessment.Validated,
		AssessedAt:   assessment.AssessedAt,
	}
	if _, err := r.assessments().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put assessment", goerr.V("id", assessment.ID))
	}
	return nil
}

func (r *assessmentRepository) PutIncident(ctx context.Context, incident *model.Incident) error {
	if incident == nil {
		return goerr.New("incident is nil")
	}
	if incident.ID == "" {
		incident.ID = model.NewIncidentID()
	}

	doc := &incidentDocument{
		ID:           string(incident.ID),
		Title:        incident.Title,
		Category:     string(incident.Category),
		BusinessUnit: incident.BusinessUnit,
		OccurredAt:   incident.OccurredAt,
	}
	if _, err := r.incidents().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put incident", goerr.V("id", incident.ID))
	}
	return nil
}
