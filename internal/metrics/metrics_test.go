package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/items/:slug", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/items/:slug", "204"))
	for _, slug := range []string{"a", "b"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/items/"+slug, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/items/:slug", "204"))
	assert.Equal(t, float64(2), after-before)
}

func TestObserveLedger(t *testing.T) {
	ok := testutil.ToFloat64(LedgerOperations.WithLabelValues("redemption", "ok"))
	failed := testutil.ToFloat64(LedgerOperations.WithLabelValues("redemption", "error"))

	ObserveLedger("redemption", nil)
	ObserveLedger("redemption", errors.New("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(LedgerOperations.WithLabelValues("redemption", "ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(LedgerOperations.WithLabelValues("redemption", "error")))
}
