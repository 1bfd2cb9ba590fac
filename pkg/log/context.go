package log

import (
	"context"
)

type key int

const loggerKey key = 0

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the context logger tagged with the request trace ID.
// A no-op logger is returned when ctx carries none.
func FromContext(ctx context.Context) Logger {
	v, ok := ctx.Value(loggerKey).(Logger)
	if !ok {
		return Nop()
	}

	return With(v, "trace_id", traceFromContext(ctx).TraceID)
}
