package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader propagates the request id across services.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the context-locals key the request id is stored under.
	RequestIDLocalKey = "request_id"
)

// RequestID ensures every request carries an id: an incoming X-Request-ID is
// preserved, otherwise a fresh UUID is minted. The id is stored in context
// locals for the logger and error envelope, and echoed on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
