package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/safetrail/safetrail/internal/auth"
	"github.com/safetrail/safetrail/internal/identity"
)

const userLocalsKey = "current_user"

// BearerAuth returns a middleware that validates bearer tokens and loads the
// authenticated user into request locals.
func BearerAuth(tokens *auth.Service, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "Invalid authentication credentials")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])
		userID, err := tokens.Verify(token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "Invalid authentication credentials")
		}

		user, err := repo.FindByID(c.UserContext(), userID)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "User not found")
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// RequireRole guards a route group to a single role. Must run after BearerAuth.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "Invalid authentication credentials")
		}
		if user.Role != role {
			return fiber.NewError(http.StatusForbidden, "Access denied")
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by BearerAuth.
func CurrentUser(c *fiber.Ctx) (identity.User, bool) {
	user, ok := c.Locals(userLocalsKey).(identity.User)
	return user, ok
}
