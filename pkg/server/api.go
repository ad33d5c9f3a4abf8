package server

import (
	"fmt"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/config"
	handlers "github.com/dinesh-git17/debate-lab-sub000/pkg/handlers/http"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type (
	ApiServerDI struct {
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		// DebateCreationLimit guards the config-validation route with the
		// tighter debate_creation window on top of the global limits.
		DebateCreationLimit middleware.Middleware
		Config              *config.Config
		Logger              *logrus.Logger
	}
	ApiServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
		debateCreationLimit middleware.Middleware
	}
)

func NewApiServer(di ApiServerDI) *ApiServer {
	return &ApiServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
		debateCreationLimit: di.DebateCreationLimit,
	}
}

func (s *ApiServer) Run() error {
	s.setupHealthCheck()
	s.setupMetricsEndpoint()
	s.setupRoutes()
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.WithField("addr", addr).Info("starting api server")
	return s.router.Listen(addr)
}

func (s *ApiServer) setupRoutes() {
	mw := s.middlewareTransport
	// Panic recovery wraps everything, including health and metrics.
	s.router.Use(
		mw.PanicRecoverMiddleware.Middleware(),
		mw.CorsMiddleware.Middleware(),
	)
	v1 := s.router.Group("/api/v1",
		mw.MetricsMiddleware.Middleware(),
		mw.SecurityMiddleware.Middleware(),
		mw.RateLimitMiddleware.Middleware(),
	)
	{
		v1.Get("/version", s.handlerTransport.GetVersionHandler.Handle)

		validate := v1.Group("/validate")
		{
			validate.Post("/topic", s.handlerTransport.ValidateTopicHandler.Handle)
			validate.Post("/rules", s.handlerTransport.ValidateRulesHandler.Handle)
			validate.Post("/config",
				s.debateCreationLimit.Middleware(),
				s.handlerTransport.ValidateConfigHandler.Handle,
			)
		}

		debates := v1.Group("/debates")
		{
			debates.Post("/track", s.handlerTransport.TrackDebateHandler.Handle)
			debates.Post("/release", s.handlerTransport.ReleaseDebateHandler.Handle)
		}

		admin := v1.Group("/admin/abuse")
		{
			admin.Get("/events", s.handlerTransport.RecentEventsHandler.Handle)
			admin.Get("/:hash", s.handlerTransport.AbuseStatusHandler.Handle)
			admin.Post("/:hash/flag", s.handlerTransport.FlagIdentityHandler.Handle)
			admin.Post("/:hash/ban", s.handlerTransport.BanIdentityHandler.Handle)
			admin.Post("/:hash/unban", s.handlerTransport.UnbanIdentityHandler.Handle)
		}
	}
}

var _ Server = (*ApiServer)(nil)

func (s *ApiServer) Shutdown() error {
	return s.router.Shutdown()
}

// Router exposes the fiber app for tests.
func (s *ApiServer) Router() *fiber.App {
	s.setupHealthCheck()
	s.setupRoutes()
	return s.router
}
