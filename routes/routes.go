package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/controllers"
	"storefront/middleware"
	"storefront/utils"
)

type Options struct {
	Handler *controllers.Handler
	JWT     *utils.JWT
	Logger  *slog.Logger
	// AllowOrigins is a comma separated CORS origin list.
	AllowOrigins string
	// StaticDir is served under /static when set.
	StaticDir string
}

// New builds the app with its middleware stack and every route.
func New(o Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: controllers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.Logging(o.Logger))
	app.Use(middleware.Prometheus())

	allow := o.AllowOrigins
	if allow == "" {
		allow = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allow,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "X-Cache, X-Request-ID",
		AllowCredentials: allow != "*",
	}))

	if o.StaticDir != "" {
		app.Static("/static", o.StaticDir)
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", o.Handler.Health)

	RegisterRoutes(app, o.Handler, o.JWT)
	return app
}

func RegisterRoutes(app *fiber.App, h *controllers.Handler, jwt *utils.JWT) {

	//products
	app.Get("/products", h.GetProducts)
	app.Get("/products/facets", h.GetProductFacets)
	app.Get("/products/:id", h.GetProductByID)
	app.Get("/products/:id/recommendations", h.GetRecommendations)

	//auth
	app.Post("/auth/register", h.Register)
	app.Post("/auth/login", h.Login)
	app.Get("/auth/me", middleware.JWTMiddleware(jwt), h.Me)

}
