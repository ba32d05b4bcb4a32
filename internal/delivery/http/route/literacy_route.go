package route

import (
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/handler"
	"github.com/evandrarf/chiapas-puede/internal/delivery/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func SetupLiteracyRoute(api *fiber.App, handler handler.LiteracyHandler, m *middleware.Middleware) {
	studentRouter := api.Group("/students")
	{
		studentRouter.Get("/", handler.Students)
		studentRouter.Get("/:id/evaluations", handler.Evaluations)
	}

	api.Get("/progression/:id", handler.Progression)
	api.Post("/evaluation", handler.Evaluate)

	exerciseRouter := api.Group("/exercises")
	{
		exerciseRouter.Get("/generate/:level", handler.Generate)
		exerciseRouter.Get("/:level", handler.ExercisesByLevel)
	}
}
