package api

import (
	"strings"
	"time"

	"rollcall-backend/internal/components/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	headerRequestID = "X-Request-Id"

	report_http_request = "http.request"
)

// RequestTrace starts a span per request and tags the response with a
// request id.
func RequestTrace() gin.HandlerFunc {
	tracer := telemetry.Tracer("rollcall.api")
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+path)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Set("request_id", reqID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(
			attribute.String("request_id", reqID),
			attribute.Int("http.status_code", status),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}

func RequestLogger(tel telemetry.API) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		params := []any{
			telemetry.KV{Key: "method", Value: c.Request.Method},
			telemetry.KV{Key: "path", Value: path},
			telemetry.KV{Key: "status", Value: status},
			telemetry.KV{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
			telemetry.KV{Key: "request_id", Value: c.GetString("request_id")},
		}

		switch {
		case status >= 500:
			tel.ReportBroken(report_http_request, params...)
		case status >= 400:
			tel.ReportWarning(report_http_request, params...)
		default:
			tel.ReportDebug(report_http_request, params...)
		}
	}
}
