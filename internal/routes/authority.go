package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/safetrail/safetrail/internal/middleware"
	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/safety"
)

// RegisterAuthorityRoutes wires the operator read path: dashboard aggregates,
// alert listing and resolution.
func RegisterAuthorityRoutes(r fiber.Router, svc *safety.Service, cache *redis.Client, logger *slog.Logger) {
	group := r.Group("/authority", authorityOnly())

	group.Get("/dashboard", middleware.SnapshotCache(cache, dashboardCacheTTL, logger), func(c *fiber.Ctx) error {
		snapshot, err := svc.Dashboard(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(snapshot)
	})

	group.Get("/alerts", func(c *fiber.Ctx) error {
		alerts, err := svc.Alerts(c.UserContext())
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		if alerts == nil {
			alerts = []model.Alert{}
		}
		return c.Status(http.StatusOK).JSON(alerts)
	})

	group.Put("/alerts/:id/resolve", func(c *fiber.Ctx) error {
		user, _ := middleware.CurrentUser(c)
		if err := svc.Resolve(c.UserContext(), c.Params("id"), user.ID); err != nil {
			if errors.Is(err, safety.ErrAlertNotFound) {
				return fiber.NewError(http.StatusNotFound, "Alert not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Alert resolved successfully"})
	})
}
