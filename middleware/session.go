// middleware/session.go
package middleware

import (
	"log"
	"strings"

	"dkp-tracker/auth"

	"github.com/gofiber/fiber/v2"
)

const (
	UserContextKey = "current_user"
	LoginPath      = "/login"
	DashboardPath  = "/dashboard"
	sessionHeader  = "X-Session-Token"
	sessionCookie  = "session_token"
)

// SessionGuard gates route entry on auth state. It blocks until the session
// watcher has determined the initial auth state, then:
//   - protected route without a user → 401 with a login redirect hint
//   - login route with a user → 307 to the dashboard
//   - otherwise pass, with the user stashed in locals for handlers.
func SessionGuard(session *auth.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Never authorize before the initial auth state is known.
		if !session.Initialized() {
			if err := session.Wait(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "auth state not ready",
				})
			}
		}

		user := session.CurrentUser(c.Context(), sessionToken(c))
		isLogin := strings.HasPrefix(c.Path(), LoginPath)

		if !isLogin && user == nil {
			log.Printf("🚫 [GUARD] unauthenticated request to %s, redirecting to login", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    "authentication required",
				"redirect": LoginPath,
			})
		}
		if isLogin && user != nil {
			log.Printf("👤 [GUARD] %s already signed in, redirecting to dashboard", user.Username)
			return c.Redirect(DashboardPath, fiber.StatusTemporaryRedirect)
		}

		if user != nil {
			c.Locals(UserContextKey, user)
		}
		return c.Next()
	}
}

// CurrentUser pulls the guard-resolved user out of the request context.
func CurrentUser(c *fiber.Ctx) *auth.User {
	if u, ok := c.Locals(UserContextKey).(*auth.User); ok {
		return u
	}
	return nil
}

func sessionToken(c *fiber.Ctx) string {
	if tok := c.Get(sessionHeader); tok != "" {
		return tok
	}
	if tok := strings.TrimPrefix(c.Get("Authorization"), "Bearer "); tok != c.Get("Authorization") {
		return tok
	}
	return c.Cookies(sessionCookie)
}
