package errutil_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/utils/errutil"
)

func TestHandleReturnsSameError(t *testing.T) {
	base := errors.New("boom")
	err := goerr.Wrap(base, "failed", goerr.V("asset_id", 1))

	got := errutil.Handle(context.Background(), err, "operation failed")
	gt.B(t, errors.Is(got, base)).True()
	gt.NoError(t, errutil.Handle(context.Background(), nil, "noop"))
}

func TestHandleHTTPWritesStatus(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("bad input"), http.StatusBadRequest)

	gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	gt.String(t, w.Body.String()).Contains("bad input")
}
