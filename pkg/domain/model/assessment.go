package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
)

// AssessmentID is a UUID-based identifier for Assessment
type AssessmentID string

// NewAssessmentID generates a new UUID v4 AssessmentID
func NewAssessmentID() AssessmentID {
	return AssessmentID(uuid.New().String())
}

// Assessment is a historical evaluation of a risk
type Assessment struct {
	ID           AssessmentID
	RiskID       int64
	Likelihood   types.Likelihood
	Impact       types.Impact
	OverallScore float64
	// QualityScore rates the assessment's rigor within [0, 1]
	QualityScore float64
	DataSources  []string
	Validated    bool
	AssessedAt   time.Time
}

// DistinctDataSources counts unique non-empty data sources
func (a *Assessment) DistinctDataSources() int {
	seen := make(map[string]struct{}, len(a.DataSources))
	for _, s := range a.DataSources {
		if s == "" {
			continue
		}
		seen[s] = struct{}{}
	}
	return len(seen)
}

// Copy returns a deep copy of the assessment
func (a *Assessment) Copy() *Assessment {
	if a == nil {
		return nil
	}
	copied := *a
	copied.DataSources = append([]string(nil), a.DataSources...)
	return &copied
}

// IncidentID is a UUID-based identifier for Incident
type IncidentID string

// AssessmentIDFromKey derives a stable AssessmentID from a natural key so re-imports replace records
func AssessmentIDFromKey(key string) AssessmentID {
	return AssessmentID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("assessment:"+key)).String())
}

// IncidentIDFromKey derives a stable IncidentID from a natural key
func IncidentIDFromKey(key string) IncidentID {
	return IncidentID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("incident:"+key)).String())
}

// NewIncidentID generates a new UUID v4 IncidentID
func NewIncidentID() IncidentID {
	return IncidentID(uuid.New().String())
}

// Incident is a recorded occurrence used for historical likelihood adjustment
type Incident struct {
	ID           IncidentID
	Title        string
	Category     types.CategoryID
	BusinessUnit string
	OccurredAt   time.Time
}

// IncidentQuery selects incidents to count. Empty fields match any value.
type IncidentQuery struct {
	Category     types.CategoryID
	BusinessUnit string
	Since        time.Time
}

// Match reports whether an incident is selected by the query
func (q IncidentQuery) Match(i *Incident) bool {
	if q.Category != "" && i.Category != q.Category {
		return false
	}
	if q.BusinessUnit != "" && i.BusinessUnit != q.BusinessUnit {
		return false
	}
	return !i.OccurredAt.Before(q.Since)
}
