package middleware

import (
	"strconv"
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// Route pattern, not the raw path, to bound label cardinality.
		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			}
		}

		prometheus.RequestTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		prometheus.RequestLatency.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		return err
	}
}
