package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the Prometheus scrape endpoint through Fiber. It
// registers the grading and HTTP collectors first so a scrape that races
// startup still sees every series.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()

	scrape := promhttp.Handler()
	return adaptor.HTTPHandler(scrape)
}
