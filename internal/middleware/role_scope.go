package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"crestfund-core/internal/domain"
)

// Scope is the already-resolved identity of the caller, supplied by the
// session layer in front of this service. This middleware never
// authenticates; it only parses what the gateway resolved.
type Scope struct {
	UserID    string
	Role      domain.Role
	CompanyID string
}

const scopeLocal = "scope"

// RoleScope reads the resolved identity headers (X-User-Id, X-User-Role,
// X-Company-Id) into Locals. Requests without a known role are rejected.
func RoleScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := domain.Role(c.Get("X-User-Role"))
		if !role.Known() {
			return fiber.NewError(fiber.StatusUnauthorized, "missing or unknown role")
		}
		scope := Scope{
			UserID: c.Get("X-User-Id"),
			Role:   role,
		}
		if cid := c.Get("X-Company-Id"); cid != "" {
			if _, err := uuid.Parse(cid); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid company id")
			}
			scope.CompanyID = cid
		}
		if role == domain.RoleAdmin && scope.CompanyID == "" {
			return fiber.NewError(fiber.StatusForbidden, "admin requests require a company scope")
		}
		c.Locals(scopeLocal, scope)
		return c.Next()
	}
}

// GetScope returns the caller scope from context.
func GetScope(c *fiber.Ctx) Scope {
	if s, ok := c.Locals(scopeLocal).(Scope); ok {
		return s
	}
	return Scope{}
}

// EffectiveCompanyScope resolves the company filter for analytics calls:
// admins are always forced to their own company; superadmins may pass any
// scope (or none) via query param.
func EffectiveCompanyScope(c *fiber.Ctx) string {
	scope := GetScope(c)
	if scope.Role == domain.RoleAdmin {
		return scope.CompanyID
	}
	return c.Query("company_id")
}
