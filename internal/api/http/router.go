package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jvegav/EcoTrade/internal/api/http/handlers"
	"github.com/jvegav/EcoTrade/internal/auth"
	"github.com/jvegav/EcoTrade/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Users        *handlers.UsersHandler
	Products     *handlers.ProductsHandler
	BearerFilter *auth.BearerFilter
	Metrics      *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))

	api := app.Group("/api", cfg.BearerFilter.Handle)

	users := api.Group("/users")
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Get("/email/:email", cfg.Users.GetByEmail)
	users.Get("/exists/:email", cfg.Users.ExistsByEmail)
	users.Post("/auth/register", cfg.Users.DelegatedRegister)
	users.Post("/auth/login", cfg.Users.DelegatedLogin)
	users.Get("/:id", cfg.Users.GetByID)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	products := api.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/user/:userId", cfg.Products.ListByOwner)
	products.Post("/user/:userId", cfg.Products.Create)
	products.Get("/:id", cfg.Products.GetByID)
	products.Put("/:id", cfg.Products.Update)
	products.Delete("/:id", cfg.Products.Delete)
}
