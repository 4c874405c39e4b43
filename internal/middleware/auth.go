package middleware

import (
	"log/slog"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/orbitcrm/orbit-backend/internal/config"
	"github.com/orbitcrm/orbit-backend/internal/envelope"
	"github.com/orbitcrm/orbit-backend/internal/identity"
	"github.com/orbitcrm/orbit-backend/internal/tenant"
)

// JWTProtected verifies the bearer token's signature and expiry against the
// configured JWK set or HS256 secret and stores the parsed token in
// c.Locals("user"). When the development bypass is active (never in
// production, never when token verification is configured) the token step
// is skipped entirely.
func JWTProtected(cfg *config.Config) fiber.Handler {
	if cfg.BypassAllowed() {
		slog.Warn("auth dev bypass active; all requests use the configured development identity")
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if !cfg.AuthConfigured() {
		return func(c *fiber.Ctx) error {
			return envelope.Fail(c, envelope.ConfigError("token verification is not configured"))
		}
	}

	wareCfg := jwtware.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return envelope.Fail(c, envelope.Unauthorized("invalid or expired token"))
		},
	}
	if cfg.AuthJWKSURL != "" {
		wareCfg.JWKSetURLs = []string{cfg.AuthJWKSURL}
	} else {
		wareCfg.SigningKey = jwtware.SigningKey{Key: []byte(cfg.JWTSecret)}
	}
	return jwtware.New(wareCfg)
}

// ResolveIdentity maps the verified token claims (or the dev bypass
// configuration) to an Identity and stores it on the request. Everything
// after this middleware trusts tenant.GetIdentity.
func ResolveIdentity(cfg *config.Config) fiber.Handler {
	rules := identity.ClaimRules{
		Issuer:       cfg.AuthIssuer,
		Audience:     cfg.AuthAudience,
		DefaultOrgID: cfg.DefaultOrgID,
	}

	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			if cfg.BypassAllowed() {
				id, err := bypassIdentity(cfg)
				if err != nil {
					return envelope.Fail(c, err)
				}
				tenant.SetIdentity(c, id)
				return c.Next()
			}
			return envelope.Fail(c, envelope.Unauthorized("authentication required"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return envelope.Fail(c, envelope.Unauthorized("invalid token claims"))
		}

		id, err := identity.FromClaims(claims, rules)
		if err != nil {
			return envelope.Fail(c, envelope.Unauthorized(err.Error()))
		}

		tenant.SetIdentity(c, id)
		return c.Next()
	}
}

func bypassIdentity(cfg *config.Config) (identity.Identity, *envelope.Error) {
	orgID, err := uuid.Parse(cfg.DevOrgID)
	if err != nil {
		return identity.Identity{}, envelope.ConfigError("DEV_ORG_ID must be a valid UUID when the auth bypass is enabled")
	}
	role := identity.Role(cfg.DevRole)
	if !role.Valid() {
		role = identity.RoleParticipant
	}
	return identity.Identity{
		Subject: cfg.DevSubject,
		Email:   cfg.DevEmail,
		Role:    role,
		OrgID:   orgID,
	}, nil
}
