package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrupee/adrupee/internal/logging"
)

func setupIdempotencyApp(t *testing.T) *fiber.App {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	calls := 0
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/redeem", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})
	return app
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app := setupIdempotencyApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/redeem", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	app := setupIdempotencyApp(t)

	first := httptest.NewRequest(fiber.MethodPost, "/redeem", strings.NewReader("{}"))
	first.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	first.Header.Set(idempotencyKeyHeader, "redeem-1")

	resp, err := app.Test(first)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	retry := httptest.NewRequest(fiber.MethodPost, "/redeem", strings.NewReader("{}"))
	retry.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	retry.Header.Set(idempotencyKeyHeader, "redeem-1")

	resp2, err := app.Test(retry)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp2.StatusCode)
	body2, err := io.ReadAll(resp2.Body)
	require.NoError(t, err)
	resp2.Body.Close()

	// The handler must not run a second time.
	assert.Equal(t, string(body), string(body2))
}

func TestIdempotencyGetPassesThrough(t *testing.T) {
	app := setupIdempotencyApp(t)
	app.Get("/history", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/history", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
