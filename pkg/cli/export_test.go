package cli

import (
	"context"
	"io"
)

var ErrInvalidArgument = errInvalidArgument

func RunWithWriter(ctx context.Context, args []string, w io.Writer) error {
	return run(ctx, args, "test", w)
}
