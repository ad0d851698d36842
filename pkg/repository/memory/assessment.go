package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
)

type assessmentRepository struct {
	mu          sync.RWMutex
	assessments map[int64]map[model.AssessmentID]*model.Assessment
	incidents   map[model.IncidentID]*model.Incident
}

func newAssessmentRepository() *assessmentRepository {
	return &assessmentRepository{
		assessments: make(map[int64]map[model.AssessmentID]*model.Assessment),
		incidents:   make(map[model.IncidentID]*model.Incident),
	}
}

// sortedByRisk returns the assessments of a risk ordered oldest first
func (r *assessmentRepository) sortedByRisk(riskID int64) []*model.Assessment {
	bucket := r.assessments[riskID]
	result := make([]*model.Assessment, 0, len(bucket))
	for _, a := range bucket {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AssessedAt.Equal(result[j].AssessedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].AssessedAt.Before(result[j].AssessedAt)
	})
	return result
}

func (r *assessmentRepository) GetLatestValidated(ctx context.Context, riskID int64) (*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedByRisk(riskID)
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Validated {
			return sorted[i].Copy(), nil
		}
	}
	return nil, nil
}

func (r *assessmentRepository) ListRecent(ctx context.Context, riskID int64, limit int) ([]*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedByRisk(riskID)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}

	result := make([]*model.Assessment, len(sorted))
	for i, a := range sorted {
		result[i] = a.Copy()
	}
	return result, nil
}

func (r *assessmentRepository) CountIncidents(ctx context.Context, query model.IncidentQuery) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, inc := range r.incidents {
		if query.Match(inc) {
			count++
		}
	}
	return count, nil
}

func (r *assessmentRepository) PutAssessment(ctx context.Context, assessment *model.Assessment) error {
	if assessment == nil {
		return goerr.New("assessment is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if assessment.ID == "" {
		assessment.ID = model.NewAssessmentID()
	}
	stored := assessment.Copy()
	if _, exists := r.assessments[stored.RiskID]; !exists {
		r.assessments[stored.RiskID] = make(map[model.AssessmentID]*model.Assessment)
	}
	r.assessments[stored.RiskID][stored.ID] = stored
	return nil
}

func (r *assessmentRepository) PutIncident(ctx context.Context, incident *model.Incident) error {
	if incident == nil {
		return goerr.New("incident is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if incident.ID == "" {
		incident.ID = model.NewIncidentID()
	}
	stored := *incident
	r.incidents[stored.ID] = &stored
	return nil
}
