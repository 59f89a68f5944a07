package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func newCorrelationApp(seen *string) *fiber.App {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/ping", func(c *fiber.Ctx) error {
		*seen = GetCorrelationID(c)
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestCorrelationIDEchoesIncomingHeader(t *testing.T) {
	var seen string
	app := newCorrelationApp(&seen)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderCorrelationID, "batch-trace-42")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "batch-trace-42", resp.Header.Get(HeaderCorrelationID))
	require.Equal(t, "batch-trace-42", seen)
}

func TestCorrelationIDFallsBackToRequestID(t *testing.T) {
	var seen string
	app := newCorrelationApp(&seen)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-7")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-7", resp.Header.Get(HeaderCorrelationID))
	require.Equal(t, "req-7", seen)
}

func TestCorrelationIDGeneratedWhenAbsent(t *testing.T) {
	var seen string
	app := newCorrelationApp(&seen)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Get(HeaderCorrelationID))
	require.Equal(t, resp.Header.Get(HeaderCorrelationID), seen)
}

func TestContextWithCorrelationRoundTrip(t *testing.T) {
	ctx := ContextWithCorrelation(context.Background(), " batch-9 ")
	require.Equal(t, "batch-9", CorrelationIDFromContext(ctx))

	require.Empty(t, CorrelationIDFromContext(context.Background()))
	same := ContextWithCorrelation(context.Background(), "   ")
	require.Empty(t, CorrelationIDFromContext(same))
}
