package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Validation
	ValidateTopicHandler  Handler
	ValidateRulesHandler  Handler
	ValidateConfigHandler Handler

	// Debate session tracking
	TrackDebateHandler   Handler
	ReleaseDebateHandler Handler

	// Abuse administration
	AbuseStatusHandler   Handler
	FlagIdentityHandler  Handler
	BanIdentityHandler   Handler
	UnbanIdentityHandler Handler
	RecentEventsHandler  Handler

	// Misc
	GetVersionHandler Handler
}
