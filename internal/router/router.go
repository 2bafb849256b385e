package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/referral-go-api/internal/config"
	"github.com/noah-isme/referral-go-api/internal/handler"
	"github.com/noah-isme/referral-go-api/internal/middleware"
	"github.com/noah-isme/referral-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DirectoryHandler   *handler.DirectoryHandler
	OpportunityHandler *handler.OpportunityHandler
	ApplicationHandler *handler.ApplicationHandler
	ActivityHandler    *handler.ActivityHandler
	JWTMiddleware      fiber.Handler
	ApplyLimiter       fiber.Handler
	HealthChecks       []handler.DependencyCheck
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler(cfg.MetricsToken))

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks...))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Registration must be mounted before the /alumni group so it skips the auth middleware.
	if deps.DirectoryHandler != nil {
		deps.DirectoryHandler.RegisterPublic(api)
	}

	studentMe := api.Group("/students/me", jwtMiddleware, middleware.RequireRole(middleware.RoleStudent))
	opportunities := api.Group("/opportunities", jwtMiddleware, middleware.RequireRole(middleware.RoleStudent))
	alumni := api.Group("/alumni", jwtMiddleware, middleware.RequireRole(middleware.RoleAlumni))

	if deps.DirectoryHandler != nil {
		deps.DirectoryHandler.RegisterStudent(studentMe)
		deps.DirectoryHandler.RegisterAlumni(alumni)
	}

	if deps.OpportunityHandler != nil {
		deps.OpportunityHandler.RegisterStudent(opportunities)
		deps.OpportunityHandler.RegisterAlumni(alumni)
	}

	if deps.ApplicationHandler != nil {
		deps.ApplicationHandler.RegisterStudent(opportunities, studentMe, deps.ApplyLimiter)
		deps.ApplicationHandler.RegisterAlumni(alumni)
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(alumni)
	}
}
