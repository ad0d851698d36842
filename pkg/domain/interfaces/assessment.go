package interfaces

import (
	"context"

	"github.com/secmon-lab/riskgraph/pkg/domain/model"
)

type AssessmentRepository interface {
	// GetLatestValidated retrieves the most recent validated assessment of a risk.
	// It returns nil without error when none exists.
	GetLatestValidated(ctx context.Context, riskID int64) (*model.Assessment, error)

	// ListRecent retrieves up to limit most recent assessments of a risk in chronological order
	ListRecent(ctx context.Context, riskID int64, limit int) ([]*model.Assessment, error)

	// CountIncidents counts incidents matching the query
	CountIncidents(ctx context.Context, query model.IncidentQuery) (int, error)

	// PutAssessment creates or replaces an assessment
	PutAssessment(ctx context.Context, assessment *model.Assessment) error

	// PutIncident creates or replaces an incident
	PutIncident(ctx context.Context, incident *model.Incident) error
}
