package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Afsalkalladi/mess-management/internal/config"
	"github.com/Afsalkalladi/mess-management/internal/core/domain"
	"github.com/Afsalkalladi/mess-management/internal/core/services"
	"github.com/Afsalkalladi/mess-management/internal/pkg/jwt"
	"github.com/Afsalkalladi/mess-management/internal/pkg/response"
)

// AuthMiddleware creates authentication middleware for the admin API
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set admin info in context
		c.Locals("adminID", claims.AdminID)
		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(string(domain.RoleAdmin))
}

// StaffTokenMiddleware authenticates scanner devices by their staff token.
// The token is presented in the X-Staff-Token header and resolved against
// its stored hash, so a revoked token stops working immediately.
func StaffTokenMiddleware(staffService *services.StaffService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		presented := c.Get("X-Staff-Token")
		if presented == "" {
			return response.Unauthorized(c, "Staff token required")
		}

		token, err := staffService.VerifyToken(c.Context(), presented)
		if err != nil {
			if err == services.ErrStaffTokenInvalid {
				return response.Unauthorized(c, "Invalid or revoked staff token")
			}
			return response.InternalServerError(c, "Failed to verify staff token")
		}

		c.Locals("staffTokenID", token.ID)
		c.Locals("staffTokenLabel", token.Label)

		return c.Next()
	}
}
