package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/board-service/internal/domain"
	apperrors "github.com/spec-kit/board-service/pkg/util"
)

// RequireRole ensures the principal holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.New(apperrors.NoAuth)
		}
		if len(allowed) == 0 {
			return c.Next()
		}
		for _, role := range allowed {
			if principal.HasAuthority(string(role)) {
				return c.Next()
			}
		}
		return apperrors.New(apperrors.NoAuth)
	}
}
