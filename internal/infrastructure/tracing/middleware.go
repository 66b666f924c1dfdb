package tracing

import (
	"github.com/gin-gonic/gin"
)

// HeaderTraceID carries the trace ID on requests and responses
const HeaderTraceID = "X-Trace-ID"

// HTTPMiddleware creates Gin middleware that assigns every request a trace
// ID, reusing the caller's X-Trace-ID when present, and echoes it back
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID, ok := ExtractTraceContext(c.GetHeader(HeaderTraceID))
		if !ok {
			traceID = NewTraceID()
		}

		c.Request = c.Request.WithContext(WithTraceID(c.Request.Context(), traceID))
		c.Header(HeaderTraceID, string(traceID))
		c.Next()
	}
}
