package middleware_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	abusemocks "github.com/dinesh-git17/debate-lab-sub000/pkg/app/abuse/mocks"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/common"
	domainabuse "github.com/dinesh-git17/debate-lab-sub000/pkg/domain/abuse"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/infra/identity"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSecurityContextMiddleware_SetsContextAndTracksVisit(t *testing.T) {
	logger := quietLogger()
	hasher := identity.NewHasher("test-salt", logger)
	tracker := new(abusemocks.Tracker)

	expectedHash := hasher.HashIP("203.0.113.7")
	tracker.On("TrackVisit", mock.Anything, expectedHash, "/test", mock.Anything).Return(nil, nil)

	var seenHash string
	var seenTraceID string
	app := fiber.New()
	app.Use(middleware.NewSecurityContextMiddleware(logger, hasher, tracker).Middleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		seenHash, _ = c.Locals(common.IdentityHashKey).(string)
		seenTraceID, _ = c.Locals(common.TraceIdKey).(string)
		secCtx, _ := c.Locals(common.SecurityContextKey).(*identity.SecurityContext)
		require.NotNil(t, secCtx)
		assert.Equal(t, "203.0.113.7", secCtx.IP)
		return c.SendString("OK")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Real-IP", "203.0.113.7")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, expectedHash, seenHash)
	assert.NotEmpty(t, seenTraceID)
	tracker.AssertExpectations(t)
}

func TestSecurityContextMiddleware_BannedIdentityGetsForbidden(t *testing.T) {
	logger := quietLogger()
	hasher := identity.NewHasher("test-salt", logger)
	tracker := new(abusemocks.Tracker)

	expiresAt := time.Now().Add(time.Hour)
	tracker.On("TrackVisit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&domainabuse.Ban{
		ID:        uuid.New(),
		BanType:   domainabuse.BanTypeTemporary,
		Reason:    domainabuse.BanReasonContentViolation,
		ExpiresAt: &expiresAt,
		IsActive:  true,
	}, nil)

	app := fiber.New()
	app.Use(middleware.NewSecurityContextMiddleware(logger, hasher, tracker).Middleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		t.Fatal("handler must not run for banned identities")
		return nil
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "access denied", body["error"])
}

func TestSecurityContextMiddleware_TrackerErrorFailsOpen(t *testing.T) {
	logger := quietLogger()
	hasher := identity.NewHasher("test-salt", logger)
	tracker := new(abusemocks.Tracker)

	tracker.On("TrackVisit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	app := fiber.New()
	app.Use(middleware.NewSecurityContextMiddleware(logger, hasher, tracker).Middleware())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
