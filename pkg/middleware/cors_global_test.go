package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsApp(allowOrigins []string, allowCredentials bool) *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewCORSGlobalMiddleware(
		allowOrigins,
		[]string{"GET", "POST", "OPTIONS"},
		allowCredentials,
		[]string{"Content-Length"},
		"12h",
	).Middleware())
	app.Get("/resource", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestCORSGlobalMiddleware_WildcardOrigin(t *testing.T) {
	app := corsApp([]string{"*"}, false)

	req := httptest.NewRequest(fiber.MethodGet, "/resource", nil)
	req.Header.Set("Origin", "https://debates.example")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Length", resp.Header.Get("Access-Control-Expose-Headers"))
}

func TestCORSGlobalMiddleware_DisallowedOriginGetsNoHeaders(t *testing.T) {
	app := corsApp([]string{"https://debates.example"}, false)

	req := httptest.NewRequest(fiber.MethodGet, "/resource", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSGlobalMiddleware_PreflightShortCircuits(t *testing.T) {
	app := corsApp([]string{"https://debates.example"}, true)

	req := httptest.NewRequest(fiber.MethodOptions, "/resource", nil)
	req.Header.Set("Origin", "https://debates.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://debates.example", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "12h", resp.Header.Get("Access-Control-Max-Age"))
}
