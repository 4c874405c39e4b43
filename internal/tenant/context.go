package tenant

import (
	"github.com/gofiber/fiber/v2"
	"github.com/orbitcrm/orbit-backend/internal/identity"
)

const identityKey = "identity"

// SetIdentity stores the verified caller identity on the request context.
// Only the auth middleware writes this.
func SetIdentity(c *fiber.Ctx, id identity.Identity) {
	c.Locals(identityKey, id)
}

// GetIdentity extracts the verified caller identity from Fiber context
// locals.
func GetIdentity(c *fiber.Ctx) (identity.Identity, bool) {
	id, ok := c.Locals(identityKey).(identity.Identity)
	return id, ok
}
