package matching

import (
	"context"

	"github.com/google/uuid"
)

type runIDKey struct{}

// WithRunID returns ctx carrying id as the current run id.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run id carried by ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func ensureRunID(ctx context.Context) (context.Context, string) {
	if id := RunID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRunID(ctx, id), id
}
