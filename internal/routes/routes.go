package routes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/safetrail/safetrail/internal/auth"
	"github.com/safetrail/safetrail/internal/config"
	"github.com/safetrail/safetrail/internal/identity"
	"github.com/safetrail/safetrail/internal/middleware"
	"github.com/safetrail/safetrail/internal/model"
	"github.com/safetrail/safetrail/internal/notification"
	"github.com/safetrail/safetrail/internal/safety"
)

const dashboardCacheTTL = 10 * time.Second

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories and services
	var identityRepo identity.Repository
	var safetyRepo safety.Repository
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		safetyRepo = safety.NewPostgresRepository(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		safetyRepo = safety.NewMemoryRepository()
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	identitySvc := identity.NewService(identityRepo)
	tokenSvc := auth.NewService(d.Cfg)
	safetySvc := safety.NewService(safetyRepo, notifier, d.Logger)
	authHandler := auth.NewHandler(identitySvc, tokenSvc, safetySvc)

	if d.Cfg.SeedDemoData {
		seedDemoData(context.Background(), identitySvc, safetySvc, d.Logger)
	}

	// API routes
	api := app.Group("/api")

	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	bearer := middleware.BearerAuth(tokenSvc, identityRepo)
	RegisterZoneRoutes(api, safetySvc, bearer)

	protected := api.Group("", bearer)
	RegisterTouristRoutes(protected, safetySvc)
	RegisterAuthorityRoutes(protected, safetySvc, d.Cache, d.Logger)

	return nil
}

// touristOnly guards tourist routes.
func touristOnly() fiber.Handler {
	return middleware.RequireRole(model.RoleTourist)
}

// authorityOnly guards operator routes.
func authorityOnly() fiber.Handler {
	return middleware.RequireRole(model.RoleAuthority)
}
