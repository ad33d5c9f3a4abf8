package middleware_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanicRecoverMiddleware_ConvertsPanicTo500(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewPanicRecoverMiddleware(quietLogger()).Middleware())
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("unexpected state")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal server error", body["error"])
}

func TestPanicRecoverMiddleware_PassesThroughNormalRequests(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.NewPanicRecoverMiddleware(quietLogger()).Middleware())
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
