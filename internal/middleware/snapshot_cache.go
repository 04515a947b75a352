package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const snapshotCachePrefix = "cache:dashboard:v1:"

// SnapshotCache serves the operator dashboard from Redis for a short TTL so
// many polling operators do not each re-aggregate the snapshot. GET only;
// fail-open when Redis is missing or unhealthy.
func SnapshotCache(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil || c.Method() != fiber.MethodGet {
			return c.Next()
		}

		key := snapshotCachePrefix + c.Path()
		if cached, err := cache.Get(c.UserContext(), key).Bytes(); err == nil {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		} else if err != redis.Nil {
			logger.Warn("dashboard cache lookup failed", slog.Any("error", err))
			return c.Next()
		}

		if err := c.Next(); err != nil {
			return err
		}
		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}

		body := make([]byte, len(c.Response().Body()))
		copy(body, c.Response().Body())
		if err := cache.Set(c.UserContext(), key, body, ttl).Err(); err != nil {
			logger.Warn("dashboard cache store failed", slog.Any("error", err))
		}
		return nil
	}
}
