package http

import (
	"github.com/dinesh-git17/debate-lab-sub000/pkg/handlers/http/request"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/ratelimit"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type trackDebateHandler struct {
	logger  *logrus.Logger
	limiter *ratelimit.Limiter
}

func NewTrackDebateHandler(logger *logrus.Logger, limiter *ratelimit.Limiter) Handler {
	return &trackDebateHandler{
		logger:  logger,
		limiter: limiter,
	}
}

// Handle @Summary Track an active debate
// @Description Registers a debate against the session's concurrency ceiling
// @Tags Debates
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Active debate count"
// @Failure 409 {object} map[string]interface{} "Session at its debate ceiling"
// @Router /api/v1/debates/track [post]
func (h *trackDebateHandler) Handle(c *fiber.Ctx) error {
	var req request.TrackDebateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.SessionID == "" || req.DebateID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_id and debate_id are required"})
	}

	if err := h.limiter.TrackActiveDebate(req.SessionID, req.DebateID); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"active_debates": h.limiter.ActiveDebates(req.SessionID),
	})
}

type releaseDebateHandler struct {
	logger  *logrus.Logger
	limiter *ratelimit.Limiter
}

func NewReleaseDebateHandler(logger *logrus.Logger, limiter *ratelimit.Limiter) Handler {
	return &releaseDebateHandler{
		logger:  logger,
		limiter: limiter,
	}
}

// Handle @Summary Release an active debate
// @Description Frees one slot in the session's concurrency ceiling
// @Tags Debates
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Active debate count"
// @Router /api/v1/debates/release [post]
func (h *releaseDebateHandler) Handle(c *fiber.Ctx) error {
	var req request.TrackDebateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.SessionID == "" || req.DebateID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session_id and debate_id are required"})
	}

	h.limiter.ReleaseActiveDebate(req.SessionID, req.DebateID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"active_debates": h.limiter.ActiveDebates(req.SessionID),
	})
}
