package middleware

import (
	"slices"
	"strings"

	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireAuth.
const (
	LocalUserID     = "user_id"
	LocalUserEmail  = "user_email"
	LocalUserName   = "user_name"
	LocalUserRole   = "user_role"
	LocalPrivileges = "user_privileges"
)

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth validates the bearer token against the signer and the user's
// current session. Role and privileges come from the stored user, so a role
// change takes effect without waiting for the token to expire.
func RequireAuth(signer *jwt.Signer, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "Missing authorization token")
		}
		token, ok := bearerToken(header)
		if !ok {
			return unauthorized(c, "Invalid authorization format. Use: Bearer <token>")
		}

		claims, err := signer.ValidateToken(token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		user, err := userRepo.FindByID(c.UserContext(), claims.UserID)
		switch {
		case err != nil:
			return unauthorized(c, "User not found")
		case !user.IsActive:
			return unauthorized(c, "User account is inactive")
		case user.TokenVersion != claims.TokenVersion:
			return unauthorized(c, "Session expired (logged in on another device)")
		}

		c.Locals(LocalUserID, user.ID.String())
		c.Locals(LocalUserEmail, user.Email)
		c.Locals(LocalUserName, user.FullName)
		c.Locals(LocalUserRole, user.Role)
		c.Locals(LocalPrivileges, user.Privileges())
		return c.Next()
	}
}

func RequirePrivilege(privilege string) fiber.Handler {
	return RequireAnyPrivilege(privilege)
}

// RequireAnyPrivilege passes when the caller holds at least one of privileges.
func RequireAnyPrivilege(privileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		held, _ := c.Locals(LocalPrivileges).([]string)
		for _, p := range privileges {
			if slices.Contains(held, p) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(privileges, ", "),
		})
	}
}
