package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/registry"
	"github.com/ahmetcoskunkizilkaya/roomfinder-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	reg *registry.Registry,
	users services.UserStore,
	listingHandler *handlers.ListingHandler,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limit per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitPerMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	protected := []fiber.Handler{middleware.JWTProtected(cfg), middleware.SyncUser(users)}

	// Listing endpoints come from the registry, in registration order, so the
	// server and the client share one route table.
	for _, route := range reg.All() {
		chain := []fiber.Handler{}
		if route.Auth {
			chain = append(chain, protected...)
		}
		chain = append(chain, listingHandler.For(route.Op))
		app.Add(route.Method, route.Path, chain...)
	}

	// Session issuance gets a stricter limit: 10 req/min per IP
	loginLimiter := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
	api.Post("/auth/dev-login", loginLimiter, authHandler.DevLogin)
	api.Post("/auth/logout", authHandler.Logout)
	api.Get("/auth/user", middleware.JWTProtected(cfg), middleware.SyncUser(users), authHandler.CurrentUser)
}
