package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afsalkalladi/mess-management/internal/config"
)

func TestHealthHandler_Root(t *testing.T) {
	h := NewHealthHandler(&config.Config{AppMode: "dev"})
	app := fiber.New()
	app.Get("/", h.Root)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "dev", body["mode"])
}

func TestHealthHandler_HealthCheckWithoutDatabase(t *testing.T) {
	h := NewHealthHandler(&config.Config{AppMode: "dev"})
	app := fiber.New()
	app.Get("/health", h.HealthCheck)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unhealthy", body["database"])
}
