package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecordsResolvedStatus(t *testing.T) {
	m := NewServerMetrics("middleware_test")

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "no such thing")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return assert.AnError
	})

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		assert.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/ok", "GET", "200")))
	// handler errors count under the status the error handler will emit,
	// not the response's pre-error status
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/missing", "GET", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/boom", "GET", "500")))
}
