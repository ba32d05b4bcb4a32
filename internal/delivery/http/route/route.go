package route

import (
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/handler"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RouteConfig carries the handlers of one process. Nil handlers are not mounted.
type RouteConfig struct {
	Api             *fiber.App
	Middleware      *middleware.Middleware
	SessionHandler  handler.SessionHandler
	LiteracyHandler handler.LiteracyHandler
}

func Setup(c *RouteConfig) {
	c.Api.Use(recover.New())
	c.Api.Use(logger.New(logger.Config{
		Format: "[${ip}]:${port} ${status} - ${method} ${path}\n",
	}))
	c.Api.Use(c.Middleware.CorsMiddleware())
	c.Api.Use(c.Middleware.RequestTimeout())

	if c.SessionHandler != nil {
		SetupSessionRoute(c.Api, c.SessionHandler, c.Middleware)
	}
	if c.LiteracyHandler != nil {
		SetupLiteracyRoute(c.Api, c.LiteracyHandler, c.Middleware)
	}
}
