package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hairalyzer-backend/internal/shared/telemetry"
)

// SubmissionIDKey is set by handlers so the request log can carry the submission.
const SubmissionIDKey = "submissionId"

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if id := c.GetString(SubmissionIDKey); id != "" {
			fields["submission_id"] = id
		}
		if provider := c.GetString(authProviderKey); provider != "" {
			fields["auth_provider"] = provider
		}
		if c.Writer.Status() >= 500 {
			telemetry.Warn("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}
