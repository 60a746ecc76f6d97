// handlers/attend.go — the Discord bot's attendance endpoint
package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"dkp-tracker/middleware"
	"dkp-tracker/services"

	"github.com/gofiber/fiber/v2"
)

// SetupDiscordRoutes wires the single bot-facing route. It is deliberately
// not behind the session guard: the bot authenticates nothing and the
// response contract (including the CORS envelope) is fixed.
func SetupDiscordRoutes(app *fiber.App, attendance *services.AttendanceService) {
	grp := app.Group("/discord", middleware.DiscordCORS())

	grp.Options("/attend", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).SendString("ok")
	})

	grp.Post("/attend", recordAttendance(attendance))

	// Any other method on the route
	grp.All("/attend", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{
			"error": "Method not allowed",
		})
	})
}

func recordAttendance(attendance *services.AttendanceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.RecordRequest
		if err := c.BodyParser(&req); err != nil {
			// Malformed bodies have always collapsed to a generic 500 on
			// this route; the bot retries, callers only branch on status.
			log.Printf("❌ [ATTEND] Bad request body: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}

		result, err := attendance.Record(c.Context(), req)
		if err != nil {
			var verr *services.ValidationError
			switch {
			case errors.As(err, &verr):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Missing required fields: " + strings.Join(verr.Fields, ", "),
				})
			case errors.Is(err, services.ErrEventNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Event not found",
				})
			default:
				log.Printf("❌ [ATTEND] Error processing attendance: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Internal server error",
				})
			}
		}

		if result.AlreadyAttending {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"message": "Already attending this event",
				"player":  result.PlayerUsername,
				"event":   result.EventName,
			})
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success":       true,
			"message":       fmt.Sprintf("%s successfully registered for %s", result.PlayerUsername, result.EventName),
			"dkp_awarded":   result.DKPAwarded,
			"new_total_dkp": result.NewTotalDKP,
		})
	}
}
