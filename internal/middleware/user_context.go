package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
)

// UserEmailHeader is set by the auth gateway in front of this service to
// the authenticated user's login email.
const UserEmailHeader = "X-User-Email"

type localsKey int

const (
	localUserEmail localsKey = iota
	localRequestID
)

// UserContext reads the gateway identity header and attaches it to the
// request. When required is set, requests without an identity are
// rejected with 401.
func UserContext(required bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		email := strings.ToLower(strings.TrimSpace(c.Get(UserEmailHeader)))
		if email == "" && required {
			return ErrorResponse(c, fiber.StatusUnauthorized, CodeUnauthorized, "Authentication required")
		}
		if email != "" {
			c.Locals(localUserEmail, email)
		}
		return c.Next()
	}
}

// CurrentUserEmail returns the identity attached by UserContext, or "".
func CurrentUserEmail(c fiber.Ctx) string {
	if email, ok := c.Locals(localUserEmail).(string); ok {
		return email
	}
	return ""
}
