package ratelimit

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "seotooler/pkg/errors"
	"seotooler/pkg/logging"
	"seotooler/pkg/metrics"
	"seotooler/pkg/tracing"
)

// IdentityContextKey is the gin context key holding the resolved identity.
const IdentityContextKey = "client_identity"

// Middleware charges every POST against the limiter before the handler
// runs. Other methods pass through untouched so the handler can answer
// preflight and 405 without consuming quota.
func Middleware(limiter *Limiter, identityHeaders []string) gin.HandlerFunc {
	exceeded := ExceededError(limiter.MaxRequests(), limiter.Window())

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		identity := ResolveIdentity(c.Request, identityHeaders)
		ctx := logging.WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)
		c.Set(IdentityContextKey, identity)

		dec := limiter.CheckAndConsume(ctx, identity)
		tracing.AnnotateRateLimit(ctx, dec.Allowed, dec.Limit, dec.Remaining)

		c.Header("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))

		if !dec.Allowed {
			metrics.IncSubmission("rate_limited")
			c.Header("Retry-After", retryAfterSeconds(dec.RetryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperrors.ToErrorResponse(exceeded))
			return
		}

		c.Next()
	}
}

// ExceededError builds the 429 error naming the configured quota, e.g.
// "You can only send 3 messages per hour."
func ExceededError(maxRequests int, window time.Duration) *apperrors.Error {
	noun := "messages"
	if maxRequests == 1 {
		noun = "message"
	}
	msg := fmt.Sprintf("Too many requests. You can only send %d %s per %s. Please try again later.",
		maxRequests, noun, describeWindow(window))
	return apperrors.ErrRateLimitExceeded.WithMessage(msg)
}

func describeWindow(d time.Duration) string {
	units := []struct {
		size time.Duration
		name string
	}{
		{24 * time.Hour, "day"},
		{time.Hour, "hour"},
		{time.Minute, "minute"},
		{time.Second, "second"},
	}
	for _, u := range units {
		if d < u.size || d%u.size != 0 {
			continue
		}
		n := int64(d / u.size)
		if n == 1 {
			return u.name
		}
		return fmt.Sprintf("%d %ss", n, u.name)
	}
	return d.String()
}

func retryAfterSeconds(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
