package log

import (
	"context"

	"idkit.io/v2/pkg/id"
)

// TraceHeader carries a caller supplied trace ID. Only valid ULIDs are honored.
const TraceHeader = "X-Request-Id"

// TraceID returns the unique ID associated with a request.
// The trace ID ties an HTTP response to the log lines it produced.
func TraceID(ctx context.Context) string {
	return traceFromContext(ctx).TraceID
}

const traceKey key = 1

type span struct {
	TraceID string
}

// newTraceContext reuses traceID when it is a ULID and mints a new one otherwise.
func newTraceContext(ctx context.Context, traceID string) context.Context {
	if !id.IsValid(traceID) {
		traceID = id.New()
	}
	return context.WithValue(ctx, traceKey, span{TraceID: traceID})
}

func traceFromContext(ctx context.Context) span {
	v, ok := ctx.Value(traceKey).(span)
	if !ok {
		return span{TraceID: id.New()}
	}

	return v
}
