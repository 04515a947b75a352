package routes

import (
	"context"
	"errors"
	"log/slog"

	"github.com/safetrail/safetrail/internal/identity"
	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/safety"
)

// seedDemoData provisions the demo accounts and zones used in development.
// Mirrors the automatic startup seeding of the original deployment. Safe to
// run repeatedly: existing accounts and zones are left alone.
func seedDemoData(ctx context.Context, ids *identity.Service, svc *safety.Service, logger *slog.Logger) {
	demoUsers := []identity.Registration{
		{
			Email:            "tourist@demo.com",
			Password:         "demo123",
			FullName:         "Demo Tourist",
			Role:             model.RoleTourist,
			Phone:            "+91-9876543210",
			EmergencyContact: "Demo Family",
			EmergencyPhone:   "+91-9876543211",
		},
		{
			Email:    "authority@demo.com",
			Password: "demo123",
			FullName: "Demo Authority Officer",
			Role:     model.RoleAuthority,
		},
	}

	for _, reg := range demoUsers {
		user, err := ids.Register(ctx, reg)
		if errors.Is(err, identity.ErrEmailTaken) {
			continue
		}
		if err != nil {
			logger.Warn("demo user seed failed", slog.String("email", reg.Email), slog.Any("error", err))
			continue
		}
		if user.Role == model.RoleTourist {
			contacts := []model.EmergencyContact{{Name: reg.EmergencyContact, Phone: reg.EmergencyPhone, Relationship: "Emergency Contact"}}
			if _, err := svc.EnsureProfile(ctx, user.ID, contacts); err != nil {
				logger.Warn("demo profile seed failed", slog.String("email", reg.Email), slog.Any("error", err))
			}
		}
		logger.Info("demo user seeded", slog.String("email", user.Email), slog.String("role", user.Role))
	}

	if err := svc.SeedDemoZones(ctx); err != nil {
		logger.Warn("demo zone seed failed", slog.Any("error", err))
	}
}
