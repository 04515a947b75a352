package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/safety"
)

// RegisterZoneRoutes wires the high-risk zone reference data. Reading is
// public; creation is restricted to authorities.
func RegisterZoneRoutes(r fiber.Router, svc *safety.Service, bearer fiber.Handler) {
	r.Get("/zones", func(c *fiber.Ctx) error {
		zones, err := svc.Zones(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		if zones == nil {
			zones = []model.Zone{}
		}
		return c.Status(http.StatusOK).JSON(zones)
	})

	r.Post("/zones", bearer, authorityOnly(), func(c *fiber.Ctx) error {
		var zone model.Zone
		if err := c.BodyParser(&zone); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		created, err := svc.CreateZone(c.UserContext(), zone)
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return c.Status(http.StatusOK).JSON(created)
	})
}
