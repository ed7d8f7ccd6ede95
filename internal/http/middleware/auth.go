package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthUserIDLocalKey is the key under which the authenticated user id is
// stored in Fiber's context locals.
const AuthUserIDLocalKey = "auth_user_id"

// Auth returns a middleware that verifies a Bearer JWT and stores the
// subject claim in context locals. Tokens are minted elsewhere; this service
// only verifies HS256 signatures against the shared secret.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization format")
		}

		token, err := jwt.ParseWithClaims(parts[1], &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok || claims.Subject == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "token subject missing")
		}

		c.Locals(AuthUserIDLocalKey, claims.Subject)
		return c.Next()
	}
}

// UserIDFromCtx returns the authenticated user id stored by Auth, or "".
func UserIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(AuthUserIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
