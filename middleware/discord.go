// middleware/discord.go
package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// DiscordCORS stamps the fixed CORS envelope the Discord bot endpoint has
// always answered with. Every response on the route carries these headers,
// error or not, so the bot's HTTP client never trips on preflight.
func DiscordCORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Access-Control-Allow-Origin", "*")
		c.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
		c.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		return c.Next()
	}
}
