package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/glosshub/glosshub/internal/tracing"
)

// traceHeaderName returns the name of the header used for trace IDs.
func traceHeaderName(config tracing.Config) string {
	if config.TraceHeader != "" {
		return config.TraceHeader
	}

	return "GH-Trace-Id"
}

// WithTrace tags every request with a trace id (from the configured
// header, or freshly generated) and a request id, so log entries for
// the request correlate.
func WithTrace(config tracing.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeaderName(config))
		if traceID == "" {
			traceID = tracing.GenerateTraceID()
		}

		ctx := tracing.WithTraceID(c.Request.Context(), traceID)
		ctx = tracing.WithRequestID(ctx, uuid.NewString())

		c.Request = c.Request.WithContext(ctx)
		c.Header(traceHeaderName(config), traceID)

		c.Next()
	}
}
