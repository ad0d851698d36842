package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/utils/errutil"
	"github.com/secmon-lab/riskgraph/pkg/utils/logging"
)

// Refresher writes a fresh copy of the source data into repo and returns the number of records written
type Refresher interface {
	Refresh(ctx context.Context, repo interfaces.Repository) (int, error)
}

// RefresherFunc adapts a function to Refresher
type RefresherFunc func(ctx context.Context, repo interfaces.Repository) (int, error)

func (f RefresherFunc) Refresh(ctx context.Context, repo interfaces.Repository) (int, error) {
	return f(ctx, repo)
}

// DatasetRefreshWorker periodically reloads a dataset into a repository while the server runs.
// Records are upserted by ID; records removed from the source stay until restart.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
// - The initial load happens before the worker starts
type DatasetRefreshWorker struct {
	repo     interfaces.Repository
	source   Refresher
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewDatasetRefreshWorker creates a worker reloading source into repo every interval
func NewDatasetRefreshWorker(repo interfaces.Repository, source Refresher, interval time.Duration) *DatasetRefreshWorker {
	return &DatasetRefreshWorker{
		repo:     repo,
		source:   source,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop without blocking
func (w *DatasetRefreshWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return goerr.New("refresh interval must be positive", goerr.V("interval", w.interval))
	}

	logging.From(ctx).Info("Dataset refresh worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion. Stop must follow a successful Start.
func (w *DatasetRefreshWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.doneCh
	logging.Default().Info("Dataset refresh worker stopped")
}

func (w *DatasetRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				// Keep serving the previous data
				_ = errutil.Handle(ctx, err, "Dataset refresh failed (will retry next interval)")
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("Dataset refresh worker context cancelled")
			return
		}
	}
}

func (w *DatasetRefreshWorker) refresh(ctx context.Context) error {
	startTime := time.Now()

	count, err := w.source.Refresh(ctx, w.repo)
	if err != nil {
		return goerr.Wrap(err, "failed to refresh dataset")
	}

	logging.From(ctx).Info("Dataset refresh completed",
		"records", count,
		"duration", time.Since(startTime).String())
	return nil
}
