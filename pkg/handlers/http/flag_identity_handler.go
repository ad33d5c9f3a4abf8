package http

import (
	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type flagIdentityHandler struct {
	logger  *logrus.Logger
	tracker abuse.Tracker
}

func NewFlagIdentityHandler(logger *logrus.Logger, tracker abuse.Tracker) Handler {
	return &flagIdentityHandler{
		logger:  logger,
		tracker: tracker,
	}
}

// Handle @Summary Flag an identity hash
// @Description Adds one flag and runs the escalation thresholds
// @Tags Abuse
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Flag recorded"
// @Failure 400 {object} map[string]interface{} "Missing reason"
// @Router /api/v1/admin/abuse/{hash}/flag [post]
func (h *flagIdentityHandler) Handle(c *fiber.Ctx) error {
	ipHash := c.Params("hash")
	if ipHash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "identity hash is required"})
	}

	var req request.FlagIdentityRequest
	if err := c.BodyParser(&req); err != nil || req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "reason is required"})
	}

	if err := h.tracker.FlagIP(c.UserContext(), ipHash, req.Reason); err != nil {
		h.logger.WithError(err).Error("failed to flag identity")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to flag identity"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"flagged": true})
}
