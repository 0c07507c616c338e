package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/konman95/mainst.ai/internal/auth"
	"github.com/konman95/mainst.ai/internal/rbac"
)

const (
	CtxTenantID = "tenant_id"
	CtxRole     = "role"
)

// AuthMiddleware resolves the bearer token into a tenant and role. The
// websocket upgrade cannot carry headers from browsers, so a token query
// parameter is accepted as well.
func AuthMiddleware(resolver *auth.Resolver, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Query("token")
		if authHeader := c.Get("Authorization"); authHeader != "" {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
			}
		}
		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		identity, err := resolver.Resolve(tokenStr)
		if err != nil {
			log.Debug("token resolve error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		// The token may alias the request buffer, which fasthttp reuses.
		c.Locals(CtxTenantID, utils.CopyString(identity.TenantID))
		c.Locals(CtxRole, utils.CopyString(identity.Role))

		return c.Next()
	}
}

func GetTenantID(c *fiber.Ctx) string {
	id, _ := c.Locals(CtxTenantID).(string)
	return id
}

func GetRole(c *fiber.Ctx) string {
	role, _ := c.Locals(CtxRole).(string)
	return role
}

// RequirePermission rejects callers whose role lacks permission.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rbac.HasPermission(GetRole(c), permission) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permissions"})
		}
		return c.Next()
	}
}
