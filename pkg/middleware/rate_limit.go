package middleware

import (
	"fmt"
	"strconv"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/common"
	domainabuse "github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/prometheus"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/ratelimit"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type rateLimitMiddleware struct {
	logger   *logrus.Logger
	limiter  *ratelimit.Limiter
	tracker  abuse.Tracker
	category ratelimit.Category
}

// NewRateLimitMiddleware gates requests through the fixed-window limiter for
// one category, keyed by the identity hash set upstream.
func NewRateLimitMiddleware(
	logger *logrus.Logger,
	limiter *ratelimit.Limiter,
	tracker abuse.Tracker,
	category ratelimit.Category,
) Middleware {
	return &rateLimitMiddleware{
		logger:   logger,
		limiter:  limiter,
		tracker:  tracker,
		category: category,
	}
}

func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ipHash, ok := ctx.Locals(common.IdentityHashKey).(string)
		if !ok || ipHash == "" {
			m.logger.Error("identity hash not found in context, skipping rate limit")
			return ctx.Next()
		}

		result, err := m.limiter.Check(ctx.UserContext(), ipHash, m.category)
		if err != nil {
			m.logger.WithError(err).Error("rate limit check failed, allowing request")
			return ctx.Next()
		}

		ctx.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		ctx.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		ctx.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if result.Allowed {
			ctx.Locals(common.RateLimitResultKey, result)
			return ctx.Next()
		}

		prometheus.RateLimitDenials.WithLabelValues(string(m.category)).Inc()
		if recErr := m.tracker.RecordEvent(ctx.UserContext(), abuse.Event{
			IPHash:   ipHash,
			Type:     domainabuse.EventRateLimitHit,
			Severity: domainabuse.EventSeverityLow,
			Endpoint: ctx.Path(),
			Details:  map[string]any{"category": string(m.category)},
		}); recErr != nil {
			m.logger.WithError(recErr).Warn("failed to record rate limit event")
		}

		retryAfterSec := result.RetryAfterMs / 1000
		if result.RetryAfterMs%1000 != 0 {
			retryAfterSec++
		}
		ctx.Set("Retry-After", fmt.Sprintf("%d", retryAfterSec))
		return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":          "rate limit exceeded",
			"retry_after_ms": result.RetryAfterMs,
		})
	}
}
