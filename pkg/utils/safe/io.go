package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/riskgraph/pkg/utils/logging"
)

// Close closes c and logs a failure instead of returning it. Nil is a no-op.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close resource", "error", err)
	}
}

// Write writes data to w, logging a failure. Used where the response is already committed.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("failed to write response", "error", err, "size", len(data))
	}
}
