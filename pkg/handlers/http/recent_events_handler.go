package http

import (
	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type recentEventsHandler struct {
	logger  *logrus.Logger
	tracker abuse.Tracker
}

func NewRecentEventsHandler(logger *logrus.Logger, tracker abuse.Tracker) Handler {
	return &recentEventsHandler{
		logger:  logger,
		tracker: tracker,
	}
}

// Handle @Summary Recent abuse events
// @Description Returns the in-memory buffer of recent events, newest first
// @Tags Abuse
// @Produce json
// @Success 200 {object} map[string]interface{} "Recent events"
// @Router /api/v1/admin/abuse/events [get]
func (h *recentEventsHandler) Handle(c *fiber.Ctx) error {
	events := h.tracker.RecentEvents(c.Query("hash"))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"events": events,
		"count":  len(events),
	})
}
