package middleware

import (
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/safetrail/safetrail/internal/logging"
)

func setupCacheApp(t *testing.T, hits *atomic.Int64) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Use(SnapshotCache(cache, time.Minute, logging.Discard()))
	app.Get("/api/authority/dashboard", func(c *fiber.Ctx) error {
		hits.Add(1)
		return c.JSON(fiber.Map{"tourists": 3})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, cleanup
}

func TestSnapshotCacheServesSecondRequestFromRedis(t *testing.T) {
	var hits atomic.Int64
	app, cleanup := setupCacheApp(t, &hits)
	defer cleanup()

	var bodies []string
	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/authority/dashboard", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: status %d", i, resp.StatusCode)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		bodies = append(bodies, string(body))
	}

	if hits.Load() != 1 {
		t.Fatalf("expected one backend hit, got %d", hits.Load())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("cached body differs: %q vs %q", bodies[0], bodies[1])
	}
}

func TestSnapshotCacheDisabledWithoutRedis(t *testing.T) {
	var hits atomic.Int64
	app := fiber.New()
	app.Use(SnapshotCache(nil, time.Minute, logging.Discard()))
	app.Get("/d", func(c *fiber.Ctx) error {
		hits.Add(1)
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/d", nil))
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		resp.Body.Close()
	}
	if hits.Load() != 2 {
		t.Fatalf("expected passthrough without redis, got %d hits", hits.Load())
	}
}
