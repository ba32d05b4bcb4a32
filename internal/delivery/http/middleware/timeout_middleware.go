package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// RequestTimeout bounds the user context of every request by api.request_timeout.
func (m *Middleware) RequestTimeout() fiber.Handler {
	timeout := m.requestTimeout()

	return func(ctx *fiber.Ctx) error {
		if timeout <= 0 {
			return ctx.Next()
		}

		c, cancel := context.WithTimeout(ctx.UserContext(), timeout)
		defer cancel()
		ctx.SetUserContext(c)
		return ctx.Next()
	}
}
