package server

import (
	"time"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/config"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Server is the common behavior of runnable servers.
type Server interface {
	Run() error
	Shutdown() error
}

type BaseServer struct {
	config *config.Config
	logger *logrus.Logger
	router *fiber.App
}

func NewBaseServer(cfg *config.Config, logger *logrus.Logger) *BaseServer {
	r := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReduceMemoryUsage:     true,
		Network:               fiber.NetworkTCP,
		EnablePrintRoutes:     false,
		BodyLimit:             1 * 1024 * 1024,
		ReadTimeout:           60 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	r.Server().MaxConnsPerIP = 1024
	r.Server().NoDefaultServerHeader = true
	r.Server().NoDefaultContentType = true

	return &BaseServer{
		config: cfg,
		logger: logger,
		router: r,
	}
}

// setupHealthCheck adds the health check endpoint to the server
func (s *BaseServer) setupHealthCheck() {
	s.router.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
}

func (s *BaseServer) setupMetricsEndpoint() {
	if !s.config.Metrics.Enabled {
		s.logger.Info("prometheus metrics are disabled by configuration")
		return
	}
	handler := fasthttpadaptor.NewFastHTTPHandler(prometheus.Handler())
	s.router.Get("/metrics", func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	})
}
