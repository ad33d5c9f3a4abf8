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

type validateRulesHandler struct {
	logger    *logrus.Logger
	validator validation.Validator
}

func NewValidateRulesHandler(logger *logrus.Logger, validator validation.Validator) Handler {
	return &validateRulesHandler{
		logger:    logger,
		validator: validator,
	}
}

// Handle @Summary Validate custom debate rules
// @Description Validates every rule and aggregates item-level errors
// @Tags Validation
// @Accept json
// @Produce json
// @Success 200 {object} validation.Result "Validation verdict"
// @Failure 400 {object} map[string]interface{} "Malformed request body"
// @Router /api/v1/validate/rules [post]
func (h *validateRulesHandler) Handle(c *fiber.Ctx) error {
	var req request.ValidateRulesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	secCtx, _ := c.Locals(common.SecurityContextKey).(*identity.SecurityContext)

	start := time.Now()
	result := h.validator.ValidateCustomRules(c.UserContext(), req.Rules, secCtx)
	prometheus.ValidationLatency.WithLabelValues("rules").Observe(float64(time.Since(start).Milliseconds()))
	prometheus.ValidationTotal.WithLabelValues("rules", outcomeLabel(result)).Inc()

	return c.Status(fiber.StatusOK).JSON(result)
}
