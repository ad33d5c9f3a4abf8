package http

import (
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse"
	domainabuse "github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type banIdentityHandler struct {
	logger  *logrus.Logger
	tracker abuse.Tracker
}

func NewBanIdentityHandler(logger *logrus.Logger, tracker abuse.Tracker) Handler {
	return &banIdentityHandler{
		logger:  logger,
		tracker: tracker,
	}
}

// Handle @Summary Ban an identity hash
// @Description Creates a ban, or returns the existing active ban unchanged
// @Tags Abuse
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Active ban"
// @Failure 400 {object} map[string]interface{} "Missing reason"
// @Router /api/v1/admin/abuse/{hash}/ban [post]
func (h *banIdentityHandler) Handle(c *fiber.Ctx) error {
	ipHash := c.Params("hash")
	if ipHash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "identity hash is required"})
	}

	var req request.BanIdentityRequest
	if err := c.BodyParser(&req); err != nil || req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reason is required"})
	}

	opts := abuse.BanOptions{
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	}
	if opts.CreatedBy == "" {
		opts.CreatedBy = "admin"
	}
	switch {
	case req.DurationHours < 0:
		permanent := time.Duration(0)
		opts.Duration = &permanent
	case req.DurationHours > 0:
		d := time.Duration(req.DurationHours) * time.Hour
		opts.Duration = &d
	}

	ban, err := h.tracker.BanIP(c.UserContext(), ipHash, domainabuse.BanReason(req.Reason), opts)
	if err != nil {
		h.logger.WithError(err).Error("failed to ban identity")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to ban identity"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ban": ban})
}

type unbanIdentityHandler struct {
	logger  *logrus.Logger
	tracker abuse.Tracker
}

func NewUnbanIdentityHandler(logger *logrus.Logger, tracker abuse.Tracker) Handler {
	return &unbanIdentityHandler{
		logger:  logger,
		tracker: tracker,
	}
}

// Handle @Summary Unban an identity hash
// @Description Deactivates the identity's active ban; a no-op when none exists
// @Tags Abuse
// @Produce json
// @Success 200 {object} map[string]interface{} "Ban deactivated"
// @Router /api/v1/admin/abuse/{hash}/unban [post]
func (h *unbanIdentityHandler) Handle(c *fiber.Ctx) error {
	ipHash := c.Params("hash")
	if ipHash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "identity hash is required"})
	}

	if err := h.tracker.UnbanIP(c.UserContext(), ipHash); err != nil {
		h.logger.WithError(err).Error("failed to unban identity")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to unban identity"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"unbanned": true})
}
