package tracing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type traceIDKey struct{}

// InjectTraceID attaches a fresh trace id to the context logger and returns
// the id so callers can surface it, e.g. in a response header.
func InjectTraceID(ctx context.Context) (context.Context, string) {
	id := uuid.New().String()
	logger := log.With().Str("traceId", id).Logger()
	ctx = logger.WithContext(ctx)
	return context.WithValue(ctx, traceIDKey{}, id), id
}

func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}
