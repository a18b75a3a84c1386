package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/propfinder/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware(deps.logger()))
	app.Use(AccessLogMiddleware(deps.logger()))

	// Observer feeds and moves arrive in bursts while walking, so the budget is generous.
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	with := func(h fiber.Handler) fiber.Handler { return timeout.NewWithContext(h, requestTimeout) }

	v1.Get("/properties", with(ListPropertiesHandler(deps)))
	v1.Get("/properties/nearby", with(NearbyPropertiesHandler(deps)))
	v1.Get("/properties/:id", with(GetPropertyHandler(deps)))

	v1.Get("/viewports", ListViewportsHandler(deps))
	v1.Get("/viewports/:id", GetViewportHandler(deps))
	v1.Put("/viewports/:id/bounds", SetBoundsHandler(deps))
	v1.Put("/viewports/:id/radius", SetRadiusHandler(deps))
	v1.Post("/viewports/:id/observer", FeedObserverHandler(deps))
	v1.Post("/viewports/:id/move", MoveHandler(deps))
	v1.Put("/viewports/:id/mode", with(SetModeHandler(deps)))
	v1.Post("/viewports/:id/zoom", ZoomHandler(deps))
	v1.Get("/viewports/:id/points", ViewportPointsHandler(deps))
	v1.Post("/viewports/:id/points/reload", with(ReloadPointsHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	if deps.NATS != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS, deps.logger())))
	}
}
