// Package tracing assigns request trace IDs for log correlation.
//
// Each HTTP request gets a "trace_" ULID, or keeps the X-Trace-ID its caller
// sent. The ID travels in the request context, is echoed in the response
// header and is attached to log lines through Logger.
//
// Example Usage:
//
//	router.Use(tracing.HTTPMiddleware())
//	log := tracing.Logger(c.Request.Context(), baseLogger)
package tracing
