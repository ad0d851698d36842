package usecase

import (
	"time"

	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/domain/model/config"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/secmon-lab/riskgraph/pkg/usecase")

type UseCases struct {
	repo        interfaces.Repository
	cfg         *config.AnalyticsConfig
	now         func() time.Time
	Dependency  *DependencyUseCase
	Impact      *ImpactUseCase
	Scoring     *ScoringUseCase
	Criticality *CriticalityUseCase
}

type Option func(*UseCases)

// WithAnalyticsConfig replaces the default calibration. The config must already be validated.
func WithAnalyticsConfig(cfg *config.AnalyticsConfig) Option {
	return func(uc *UseCases) {
		uc.cfg = cfg
	}
}

// WithClock sets the time source used for review age, incident lookback and score timestamps
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		cfg:  config.Default(),
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Dependency = NewDependencyUseCase(repo, uc.cfg)
	uc.Impact = NewImpactUseCase(repo, uc.cfg, uc.Dependency)
	uc.Scoring = NewScoringUseCase(repo, uc.cfg, uc.now)
	uc.Criticality = NewCriticalityUseCase(repo, uc.cfg)

	return uc
}

// Config returns the calibration in use
func (uc *UseCases) Config() *config.AnalyticsConfig {
	return uc.cfg
}
