package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/secmon-lab/riskgraph/pkg/utils/metrics"
)

func TestObserveCountsByStatus(t *testing.T) {
	success := testutil.ToFloat64(metrics.AnalysesTotal.WithLabelValues("test_observe", metrics.StatusSuccess))
	failure := testutil.ToFloat64(metrics.AnalysesTotal.WithLabelValues("test_observe", metrics.StatusError))

	metrics.Observe("test_observe", time.Now(), nil)
	metrics.Observe("test_observe", time.Now(), errors.New("failed"))
	metrics.Observe("test_observe", time.Now(), errors.New("failed"))

	gt.Value(t, testutil.ToFloat64(metrics.AnalysesTotal.WithLabelValues("test_observe", metrics.StatusSuccess))).Equal(success + 1)
	gt.Value(t, testutil.ToFloat64(metrics.AnalysesTotal.WithLabelValues("test_observe", metrics.StatusError))).Equal(failure + 2)
}
