package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/safetrail/safetrail/internal/middleware"
	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/safety"
)

// RegisterTouristRoutes wires the tracked-user endpoints: profile, location
// reporting and the panic button.
func RegisterTouristRoutes(r fiber.Router, svc *safety.Service) {
	group := r.Group("/tourist", touristOnly())

	group.Get("/profile", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		profile, err := svc.Profile(c.UserContext(), user.ID)
		if err != nil {
			if errors.Is(err, safety.ErrProfileNotFound) {
				return fiber.NewError(http.StatusNotFound, "Tourist profile not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(profile)
	})

	group.Put("/location", func(c *fiber.Ctx) error {
		var req model.LocationUpdate
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, _ := middleware.CurrentUser(c)
		if err := svc.UpdateLocation(c.UserContext(), user.ID, req.Latitude, req.Longitude); err != nil {
			if errors.Is(err, safety.ErrProfileNotFound) {
				return fiber.NewError(http.StatusNotFound, "Tourist profile not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Location updated successfully"})
	})

	group.Post("/panic", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		alert, err := svc.Panic(c.UserContext(), user.ID, user.FullName)
		if err != nil {
			if errors.Is(err, safety.ErrNoLocation) || errors.Is(err, safety.ErrProfileNotFound) {
				return fiber.NewError(http.StatusBadRequest, "Location not available")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"message":  "Panic alert sent successfully",
			"alert_id": alert.ID,
		})
	})
}
