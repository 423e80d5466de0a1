package transport

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pazarhub/notify-service/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// CorrelationMiddleware propagates the caller's request id (or mints one)
// into the request context so service-layer logs carry it.
func CorrelationMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationID := strings.TrimSpace(c.Get(requestIDHeader))
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), correlationID))
		c.Set(requestIDHeader, correlationID)

		return c.Next()
	}
}
