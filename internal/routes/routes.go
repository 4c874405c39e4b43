package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/orbitcrm/orbit-backend/internal/actions"
	"github.com/orbitcrm/orbit-backend/internal/config"
	"github.com/orbitcrm/orbit-backend/internal/handlers"
	"github.com/orbitcrm/orbit-backend/internal/middleware"
	"github.com/orbitcrm/orbit-backend/internal/ratelimit"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	limiter ratelimit.Limiter,
	router *actions.Router,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// Health (no auth, no rate limit)
	api.Get("/health", healthHandler.Check)

	// The single action endpoint. Order matters: the abuse guard runs
	// before token verification so excess traffic is rejected before any
	// crypto or database work.
	dispatch := api.Group("/actions",
		middleware.RateLimit(limiter),
		middleware.JWTProtected(cfg),
		middleware.ResolveIdentity(cfg),
	)
	dispatch.Get("/", router.Dispatch)
	dispatch.Post("/", router.Dispatch)
}
