// handlers/events.go — officer-facing event CRUD
package handlers

import (
	"errors"

	"dkp-tracker/middleware"
	"dkp-tracker/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, events *services.EventService, attendance *services.AttendanceService, guard fiber.Handler) {
	// 🔐 The whole event catalogue sits behind the login wall.
	secured := app.Group("/events", guard)

	secured.Get("/", func(c *fiber.Ctx) error {
		list, err := events.List(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list events"})
		}
		return c.JSON(list)
	})

	secured.Get("/:id", func(c *fiber.Ctx) error {
		event, err := events.Get(c.Context(), c.Params("id"))
		if err != nil {
			return mapEventError(c, err)
		}
		return c.JSON(event)
	})

	secured.Get("/:id/attendances", func(c *fiber.Ctx) error {
		rows, err := attendance.Attendees(c.Context(), c.Params("id"))
		if err != nil {
			return mapEventError(c, err)
		}
		return c.JSON(rows)
	})

	secured.Post("/", func(c *fiber.Ctx) error {
		var in services.EventInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		createdBy := ""
		if u := middleware.CurrentUser(c); u != nil {
			createdBy = u.ID
		}

		event, err := events.Create(c.Context(), in, createdBy)
		if err != nil {
			return mapEventError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(event)
	})

	secured.Put("/:id", func(c *fiber.Ctx) error {
		var in services.EventInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
		}

		event, err := events.Update(c.Context(), c.Params("id"), in)
		if err != nil {
			return mapEventError(c, err)
		}
		return c.JSON(event)
	})

	secured.Delete("/:id", func(c *fiber.Ctx) error {
		if err := events.Delete(c.Context(), c.Params("id")); err != nil {
			return mapEventError(c, err)
		}
		return c.JSON(fiber.Map{"message": "event deleted"})
	})
}

func mapEventError(c *fiber.Ctx, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Error()})
	case errors.Is(err, services.ErrEventNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Event not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
