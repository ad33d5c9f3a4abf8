package http

import (
	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse"
	domainabuse "github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type abuseStatusHandler struct {
	logger   *logrus.Logger
	tracker  abuse.Tracker
	tracking domainabuse.TrackingRepository
	logs     domainabuse.LogRepository
}

func NewAbuseStatusHandler(
	logger *logrus.Logger,
	tracker abuse.Tracker,
	tracking domainabuse.TrackingRepository,
	logs domainabuse.LogRepository,
) Handler {
	return &abuseStatusHandler{
		logger:   logger,
		tracker:  tracker,
		tracking: tracking,
		logs:     logs,
	}
}

// Handle @Summary Abuse status for an identity hash
// @Description Returns the tracking record, active ban and recent events
// @Tags Abuse
// @Produce json
// @Success 200 {object} map[string]interface{} "Abuse status"
// @Failure 404 {object} map[string]interface{} "Unknown identity hash"
// @Router /api/v1/admin/abuse/{hash} [get]
func (h *abuseStatusHandler) Handle(c *fiber.Ctx) error {
	ipHash := c.Params("hash")
	if ipHash == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "identity hash is required"})
	}

	record, err := h.tracking.GetByHash(c.UserContext(), ipHash)
	if err != nil {
		h.logger.WithError(err).Error("failed to load tracking record")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load abuse status"})
	}
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "identity not tracked"})
	}

	ban, err := h.tracker.CheckBan(c.UserContext(), ipHash)
	if err != nil {
		h.logger.WithError(err).Error("failed to check ban status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load abuse status"})
	}

	events, err := h.logs.RecentByHash(c.UserContext(), ipHash, 20)
	if err != nil {
		h.logger.WithError(err).Warn("failed to load recent events")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"tracking":      record,
		"active_ban":    ban,
		"recent_events": events,
	})
}
