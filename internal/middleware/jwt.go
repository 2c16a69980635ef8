package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/adrupee/adrupee/internal/auth"
)

// JWTAuth validates bearer access tokens and stores the resolved user
// identity in request locals. Handlers downstream only ever see the user id,
// never the raw credential.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		userID, err := auth.ParseToken(tokenStr, []byte(secret))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
