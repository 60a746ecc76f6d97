// handlers/players.go — the DKP table and manual corrections
package handlers

import (
	"errors"
	"log"
	"strconv"

	"dkp-tracker/middleware"
	"dkp-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPlayerRoutes(app *fiber.App, players *services.PlayerService, export *services.ExportService, guard fiber.Handler) {
	secured := app.Group("/players", guard)

	// The DKP table the dashboard renders: rank-ordered, searchable.
	secured.Get("/", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		standings, err := players.Standings(c.Context(), c.Query("q", ""), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load standings"})
		}
		return c.JSON(standings)
	})

	secured.Get("/:id", func(c *fiber.Ctx) error {
		history, err := players.Get(c.Context(), c.Params("id"))
		if err != nil {
			return mapPlayerError(c, err)
		}
		return c.JSON(history)
	})

	secured.Post("/:id/adjust", func(c *fiber.Ctx) error {
		var in services.AdjustInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}
		in.PlayerID = c.Params("id")
		if u := middleware.CurrentUser(c); u != nil {
			in.AdjustedBy = u.ID
		}

		player, err := players.Adjust(c.Context(), in)
		if err != nil {
			return mapPlayerError(c, err)
		}
		return c.JSON(fiber.Map{
			"message":       "DKP adjusted",
			"player":        player.Username,
			"new_total_dkp": player.TotalDKP,
		})
	})

	// Admin: on-demand standings snapshot to object storage.
	admin := app.Group("/admin", guard)
	admin.Post("/standings/export", func(c *fiber.Ctx) error {
		url, err := export.Export(c.Context())
		if err != nil {
			log.Printf("❌ Standings export failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
		}
		return c.JSON(fiber.Map{"message": "standings exported", "url": url})
	})
}

func mapPlayerError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Error()})
	case errors.Is(err, services.ErrPlayerNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Player not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
