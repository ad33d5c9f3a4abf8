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

type validateTopicHandler struct {
	logger    *logrus.Logger
	validator validation.Validator
}

func NewValidateTopicHandler(logger *logrus.Logger, validator validation.Validator) Handler {
	return &validateTopicHandler{
		logger:    logger,
		validator: validator,
	}
}

// Handle @Summary Validate a debate topic
// @Description Runs the full validation pipeline over a proposed debate topic
// @Tags Validation
// @Accept json
// @Produce json
// @Success 200 {object} validation.Result "Validation verdict"
// @Failure 400 {object} map[string]interface{} "Malformed request body"
// @Router /api/v1/validate/topic [post]
func (h *validateTopicHandler) Handle(c *fiber.Ctx) error {
	var req request.ValidateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	secCtx, _ := c.Locals(common.SecurityContextKey).(*identity.SecurityContext)

	start := time.Now()
	result := h.validator.ValidateDebateTopic(c.UserContext(), req.Topic, secCtx)
	prometheus.ValidationLatency.WithLabelValues("topic").Observe(float64(time.Since(start).Milliseconds()))
	prometheus.ValidationTotal.WithLabelValues("topic", outcomeLabel(result)).Inc()

	return c.Status(fiber.StatusOK).JSON(result)
}

func outcomeLabel(r *validation.Result) string {
	switch {
	case r.Blocked:
		return "blocked"
	case !r.Valid:
		return "invalid"
	default:
		return "valid"
	}
}
