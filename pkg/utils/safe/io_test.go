package safe_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskgraph/pkg/utils/safe"
)

type closer struct {
	closed bool
	err    error
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	safe.Close(ctx, nil)

	c := &closer{}
	safe.Close(ctx, c)
	gt.B(t, c.closed).True()

	failing := &closer{err: errors.New("boom")}
	safe.Close(ctx, failing)
	gt.B(t, failing.closed).True()
}

func TestWrite(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	safe.Write(ctx, &buf, []byte("ok"))
	gt.Value(t, buf.String()).Equal("ok")

	safe.Write(ctx, nil, []byte("ignored"))
	safe.Write(ctx, failingWriter{}, []byte("lost"))
}
