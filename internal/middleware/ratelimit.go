package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/orbitcrm/orbit-backend/internal/envelope"
	"github.com/orbitcrm/orbit-backend/internal/ratelimit"
)

// RateLimit rejects excess traffic before identity verification or any
// database work. The caller key is the first forwarded-for hop, or the
// peer address when the request arrives directly.
func RateLimit(limiter ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !limiter.Allow(callerKey(c)) {
			return envelope.Fail(c, envelope.RateLimited("too many requests"))
		}
		return c.Next()
	}
}

func callerKey(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if i := strings.IndexByte(forwarded, ','); i >= 0 {
		forwarded = forwarded[:i]
	}
	if key := strings.TrimSpace(forwarded); key != "" {
		return key
	}
	return c.IP()
}
