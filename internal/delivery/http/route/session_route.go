package route

import (
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/handler"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func SetupSessionRoute(api *fiber.App, handler handler.SessionHandler, m *middleware.Middleware) {
	router := api.Group("/session")
	{
		router.Get("/", handler.Get)
		router.Post("/login", handler.Login)
		router.Delete("/login", handler.Logout)
		router.Post("/exercises/:level", handler.LoadLevel)
		router.Post("/exercise/:id", handler.Begin)
		router.Delete("/exercise", handler.Cancel)
		router.Put("/answer", handler.Answer)
		router.Post("/submit", handler.Submit)
		router.Delete("/result", handler.DismissResult)
	}
}
