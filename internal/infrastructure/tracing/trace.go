package tracing

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/filebrowser/internal/shared/id"
)

// TraceID correlates the log lines of one request
type TraceID string

type contextKey int

const traceIDKey contextKey = iota

// maxTraceIDLength bounds client-supplied trace IDs
const maxTraceIDLength = 128

// NewTraceID generates a fresh trace ID
func NewTraceID() TraceID {
	return TraceID(id.NewTraceID())
}

// WithTraceID returns a context carrying traceID
func WithTraceID(ctx context.Context, traceID TraceID) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID returns the trace ID stored in ctx, or ""
func GetTraceID(ctx context.Context) TraceID {
	traceID, _ := ctx.Value(traceIDKey).(TraceID)
	return traceID
}

// Logger returns log annotated with the trace ID of ctx, if any
func Logger(ctx context.Context, log *zap.Logger) *zap.Logger {
	if traceID := GetTraceID(ctx); traceID != "" {
		return log.With(zap.String("trace_id", string(traceID)))
	}
	return log
}

// ExtractTraceContext reads an incoming trace ID header value, rejecting
// empty or oversized ones
func ExtractTraceContext(header string) (TraceID, bool) {
	if header == "" || len(header) > maxTraceIDLength {
		return "", false
	}
	return TraceID(header), true
}
