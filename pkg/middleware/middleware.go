package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "seotooler/pkg/errors"
	"seotooler/pkg/logging"
	"seotooler/pkg/metrics"
)

const RequestIDHeader = "X-Request-ID"

type requestLogger interface {
	InfowCtx(ctx context.Context, msg string, keysAndValues ...interface{})
	ErrorwCtx(ctx context.Context, msg string, keysAndValues ...interface{})
}

// LoggerMiddleware logs one line per request and records the HTTP metrics.
// 5xx responses are logged at error level.
func LoggerMiddleware(logger requestLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		method := c.Request.Method
		statusCode := c.Writer.Status()

		metrics.ObserveHTTPRequest(method, statusCode, latency)

		logFields := []interface{}{
			"status", statusCode,
			"latency", latency,
			"method", method,
			"path", path,
			"user_agent", c.Request.UserAgent(),
		}
		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			logFields = append(logFields, "error", errorMessage)
		}

		ctx := c.Request.Context()
		if statusCode >= 500 {
			logger.ErrorwCtx(ctx, "HTTP Request", logFields...)
		} else {
			logger.InfowCtx(ctx, "HTTP Request", logFields...)
		}
	}
}

// RecoveryMiddleware turns a panic into 500 {"message":"Internal server error"}.
func RecoveryMiddleware(logger interface {
	ErrorwCtx(ctx context.Context, msg string, keysAndValues ...interface{})
}) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		err := apperrors.RecoverPanic(recovered)
		fields := []interface{}{
			"error", err,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		}
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			fields = append(fields, "stack_trace", appErr.Details["stack_trace"])
		}
		logger.ErrorwCtx(c.Request.Context(), "Panic recovered", fields...)

		c.AbortWithStatusJSON(apperrors.ToHTTPStatus(err), apperrors.ToErrorResponse(err))
	})
}

// RequestIDMiddleware propagates X-Request-ID, generating one when absent,
// and stores it in the request context for logging.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(string(logging.RequestIDKey), requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}
