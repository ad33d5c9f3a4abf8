package http

import (
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/validation"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/common"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/handlers/http/request"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/identity"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type validateConfigHandler struct {
	logger    *logrus.Logger
	validator validation.Validator
}

func NewValidateConfigHandler(logger *logrus.Logger, validator validation.Validator) Handler {
	return &validateConfigHandler{
		logger:    logger,
		validator: validator,
	}
}

// Handle @Summary Validate a full debate configuration
// @Description Validates topic, rules, turn count and format, aggregating all errors
// @Tags Validation
// @Accept json
// @Produce json
// @Success 200 {object} validation.ConfigResult "Config validation verdict"
// @Failure 400 {object} map[string]interface{} "Malformed request body"
// @Router /api/v1/validate/config [post]
func (h *validateConfigHandler) Handle(c *fiber.Ctx) error {
	var req request.ValidateConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	secCtx, _ := c.Locals(common.SecurityContextKey).(*identity.SecurityContext)

	start := time.Now()
	result := h.validator.ValidateAndSanitizeDebateConfig(c.UserContext(), validation.DebateConfig{
		Topic:     req.Topic,
		Rules:     req.Rules,
		TurnCount: req.TurnCount,
		Format:    req.Format,
	}, secCtx)
	prometheus.ValidationLatency.WithLabelValues("config").Observe(float64(time.Since(start).Milliseconds()))

	outcome := "valid"
	switch {
	case result.Blocked:
		outcome = "blocked"
	case !result.Valid:
		outcome = "invalid"
	}
	prometheus.ValidationTotal.WithLabelValues("config", outcome).Inc()

	return c.Status(fiber.StatusOK).JSON(result)
}
