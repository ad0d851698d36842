package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/domain/interfaces"
	"github.com/secmon-lab/riskgraph/pkg/domain/model"
	"github.com/secmon-lab/riskgraph/pkg/domain/types"
	"github.com/secmon-lab/riskgraph/pkg/repository/memory"
	"github.com/secmon-lab/riskgraph/pkg/service/worker"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDatasetRefreshWorker(t *testing.T) {
	t.Run("reloads on every tick", func(t *testing.T) {
		repo := memory.New()
		var calls atomic.Int32

		source := worker.RefresherFunc(func(ctx context.Context, r interfaces.Repository) (int, error) {
			calls.Add(1)
			return 1, r.Asset().Put(ctx, &model.Asset{
				ID:          1,
				Name:        "web",
				Type:        types.AssetTypeServer,
				Criticality: types.CriticalityHigh,
				Environment: types.EnvironmentProduction,
			})
		})

		w := worker.NewDatasetRefreshWorker(repo, source, 10*time.Millisecond)
		gt.NoError(t, w.Start(context.Background())).Required()
		waitFor(t, func() bool { return calls.Load() >= 2 })
		w.Stop()

		asset, err := repo.Asset().Get(context.Background(), 1)
		gt.NoError(t, err).Required()
		gt.Value(t, asset.Name).Equal("web")
	})

	t.Run("keeps running after a failed refresh", func(t *testing.T) {
		var calls atomic.Int32
		source := worker.RefresherFunc(func(ctx context.Context, r interfaces.Repository) (int, error) {
			if calls.Add(1) == 1 {
				return 0, errors.New("object unavailable")
			}
			return 0, nil
		})

		w := worker.NewDatasetRefreshWorker(memory.New(), source, 10*time.Millisecond)
		gt.NoError(t, w.Start(context.Background())).Required()
		waitFor(t, func() bool { return calls.Load() >= 3 })
		w.Stop()
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		source := worker.RefresherFunc(func(ctx context.Context, r interfaces.Repository) (int, error) {
			return 0, nil
		})

		w := worker.NewDatasetRefreshWorker(memory.New(), source, time.Hour)
		gt.NoError(t, w.Start(ctx)).Required()
		cancel()
		w.Stop()
	})

	t.Run("rejects a non positive interval", func(t *testing.T) {
		w := worker.NewDatasetRefreshWorker(memory.New(), worker.RefresherFunc(nil), 0)
		gt.Error(t, w.Start(context.Background()))
	})
}
