package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireIdentity ensures the AuthorizationGate established a caller identity.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromCtx(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}

// RequireRole ensures the caller carries at least one of the allowed roles.
func RequireRole(allowed ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromCtx(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if len(allowed) == 0 {
			return c.Next()
		}
		for _, role := range allowed {
			if identity.HasRole(role) {
				return c.Next()
			}
		}
		return fiber.NewError(http.StatusForbidden, "insufficient role")
	}
}
