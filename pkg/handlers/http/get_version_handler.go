package http

import (
	"github.com/dinesh-git17/debate-lab-sub000/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getVersionHandler struct {
	logger *logrus.Logger
}

func NewGetVersionHandler(logger *logrus.Logger) Handler {
	return &getVersionHandler{
		logger: logger,
	}
}

// Handle @Summary Get service version
// @Description Returns the current service version
// @Tags Version
// @Produce json
// @Success 200 {object} map[string]interface{} "Version information"
// @Router /api/v1/version [get]
func (h *getVersionHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(version.GetInfo())
}
