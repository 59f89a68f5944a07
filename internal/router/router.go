package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/inkwell-ed/inkwell-api/internal/config"
	"github.com/inkwell-ed/inkwell-api/internal/handler"
	"github.com/inkwell-ed/inkwell-api/internal/middleware"
	"github.com/inkwell-ed/inkwell-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	StudentHandler    *handler.StudentHandler
	GradingHandler    *handler.GradingHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments"))
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions"))
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students"))
	}

	if deps.GradingHandler != nil {
		// Grading triggers fan out into model calls, so the group carries a
		// tight per-client budget on top of the shared model pacing.
		grading := api.Group("/grading", middleware.RateLimit("grading", cfg.GradingTriggerLimit, time.Minute))
		deps.GradingHandler.Register(grading)
	}
}
