package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/validation"
	"github.com/dinesh-git17/debate-lab-sub000/pkg/app/validation/mocks"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestValidateRulesHandler(t *testing.T) {
	t.Run("returns the aggregated verdict", func(t *testing.T) {
		validator := new(mocks.Validator)
		validator.On("ValidateCustomRules", mock.Anything, []string{"no ad hominem", "cite sources"}, mock.Anything).
			Return(&validation.Result{
				Valid:           true,
				SanitizedValues: []string{"no ad hominem", "cite sources"},
			})

		app := fiber.New()
		app.Post("/validate/rules", NewValidateRulesHandler(quietLogger(), validator).Handle)

		body, _ := json.Marshal(map[string][]string{"rules": {"no ad hominem", "cite sources"}})
		req := httptest.NewRequest(fiber.MethodPost, "/validate/rules", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var result validation.Result
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Valid)
		assert.Len(t, result.SanitizedValues, 2)
		validator.AssertExpectations(t)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		validator := new(mocks.Validator)

		app := fiber.New()
		app.Post("/validate/rules", NewValidateRulesHandler(quietLogger(), validator).Handle)

		req := httptest.NewRequest(fiber.MethodPost, "/validate/rules", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		validator.AssertNotCalled(t, "ValidateCustomRules", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestValidateConfigHandler(t *testing.T) {
	validator := new(mocks.Validator)
	validator.On("ValidateAndSanitizeDebateConfig", mock.Anything,
		validation.DebateConfig{Topic: "Is remote work here to stay?", TurnCount: 8, Format: "standard"},
		mock.Anything).
		Return(&validation.ConfigResult{
			Valid: true,
			SanitizedConfig: &validation.DebateConfig{
				Topic:     "Is remote work here to stay?",
				TurnCount: 8,
				Format:    "standard",
			},
		})

	app := fiber.New()
	app.Post("/validate/config", NewValidateConfigHandler(quietLogger(), validator).Handle)

	body, _ := json.Marshal(map[string]any{
		"topic":      "Is remote work here to stay?",
		"turn_count": 8,
		"format":     "standard",
	})
	req := httptest.NewRequest(fiber.MethodPost, "/validate/config", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result validation.ConfigResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Valid)
	require.NotNil(t, result.SanitizedConfig)
	assert.Equal(t, 8, result.SanitizedConfig.TurnCount)
	validator.AssertExpectations(t)
}

func TestGetVersionHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/version", NewGetVersionHandler(quietLogger()).Handle)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/version", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["version"])
	assert.NotEmpty(t, body["go_version"])
}
