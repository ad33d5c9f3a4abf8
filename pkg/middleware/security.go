package middleware

import (
	"context"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/common"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type securityContextMiddleware struct {
	logger  *logrus.Logger
	hasher  *identity.Hasher
	tracker abuse.Tracker
}

// NewSecurityContextMiddleware builds the per-request security context,
// tracks the visit and rejects requests from banned identities.
func NewSecurityContextMiddleware(
	logger *logrus.Logger,
	hasher *identity.Hasher,
	tracker abuse.Tracker,
) Middleware {
	return &securityContextMiddleware{
		logger:  logger,
		hasher:  hasher,
		tracker: tracker,
	}
}

func (m *securityContextMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		secCtx := identity.FromRequest(ctx)
		ipHash := m.hasher.HashIP(secCtx.IP)

		id := uuid.New().String()
		ctx.Locals(common.TraceIdKey, id)
		ctx.Locals(common.SecurityContextKey, secCtx)
		ctx.Locals(common.IdentityHashKey, ipHash)

		c := context.WithValue(ctx.Context(), common.TraceIdKey, id)
		c = context.WithValue(c, common.IdentityHashKey, ipHash)
		ctx.SetUserContext(c)

		ban, err := m.tracker.TrackVisit(ctx.UserContext(), ipHash, ctx.Path(), map[string]any{
			"user_agent": secCtx.UserAgent,
		})
		if err != nil {
			m.logger.WithError(err).Warn("visit tracking failed")
		}
		if ban != nil {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "access denied",
			})
		}
		return ctx.Next()
	}
}
