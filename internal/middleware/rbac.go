package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/referral-go-api/internal/utils"
)

// RequireRole admits only callers whose token role is one of roles.
// It panics on a role no token can carry, since such a route could never be reached.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := normalizeRole(role)
		if normalized != RoleStudent && normalized != RoleAlumni {
			panic(fmt.Sprintf("middleware: unknown role %q", role))
		}
		allowed[normalized] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		_, role, ok := CallerFromLocals(c)
		if !ok {
			return utils.SendErrorWithReason(c, fiber.StatusForbidden, "caller-unknown", "insufficient permissions")
		}
		if _, ok := allowed[role]; !ok {
			return utils.SendErrorWithReason(c, fiber.StatusForbidden, "role-forbidden", "insufficient permissions")
		}
		return c.Next()
	}
}
