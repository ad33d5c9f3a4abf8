package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type panicRecoverMiddleware struct {
	logger *logrus.Logger
}

// NewPanicRecoverMiddleware converts handler panics into a 500 response so a
// single bad request cannot take the worker down.
func NewPanicRecoverMiddleware(logger *logrus.Logger) Middleware {
	return &panicRecoverMiddleware{logger: logger}
}

func (m *panicRecoverMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			m.logger.WithFields(logrus.Fields{
				"panic":  r,
				"path":   c.Path(),
				"method": c.Method(),
			}).Error("recovered from handler panic")

			// Leave the response alone if the handler already wrote one.
			if len(c.Response().Body()) == 0 {
				_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "internal server error",
				})
			}
		}()

		return c.Next()
	}
}
