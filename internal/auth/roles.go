package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/desivolt/muzdesk/internal/domain"
)

// RequireRole ensures the principal signed in with the given role.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if principal.Role() != role {
			return fiber.NewError(http.StatusForbidden, string(role)+" role required")
		}
		return c.Next()
	}
}
