package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName      = "SafeTrail"
	defaultAppEnv       = "development"
	defaultPort         = "8080"
	defaultLogLevel     = "info"
	defaultJWTSecret    = "safetrail-dev-secret-change-in-production"
	defaultTokenTTL     = 24 * time.Hour
	defaultShutdown     = 10 * time.Second
	defaultPollInterval = 30 * time.Second
	defaultAPIBaseURL   = "http://localhost:8080/api"

	tokenTTLEnvVar       = "TOKEN_TTL"
	shutdownDurEnvVar    = "SHUTDOWN_TIMEOUT"
	pollIntervalEnvVar   = "DASHBOARD_POLL_INTERVAL"
	pollIntervalMsEnvVar = "DASHBOARD_POLL_INTERVAL_MS"
)

// Config captures runtime configuration for both the backing service and the
// client, loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	// Backing service.
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	TokenTTL       time.Duration
	ShutdownPeriod time.Duration
	SeedDemoData   bool

	// Client.
	APIBaseURL   string
	SessionFile  string
	PollInterval time.Duration
}

// Load reads configuration values from the environment and populates a Config
// instance. DATABASE_URL and REDIS_URL are optional in development, where the
// service falls back to fully in-memory storage.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      getEnv("JWT_SECRET_KEY", defaultJWTSecret),
		TokenTTL:       defaultTokenTTL,
		ShutdownPeriod: defaultShutdown,
		APIBaseURL:     getEnv("SAFETRAIL_API_URL", defaultAPIBaseURL),
		SessionFile:    os.Getenv("SAFETRAIL_SESSION_FILE"),
		PollInterval:   defaultPollInterval,
	}

	cfg.SeedDemoData = cfg.IsDev()
	if v := os.Getenv("SEED_DEMO_DATA"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SEED_DEMO_DATA: %w", err)
		}
		cfg.SeedDemoData = seed
	}

	if v := os.Getenv(tokenTTLEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", tokenTTLEnvVar, err)
		}
		cfg.TokenTTL = d
	}

	if v := os.Getenv(shutdownDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(pollIntervalMsEnvVar); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", pollIntervalMsEnvVar, err)
		}
		cfg.PollInterval = time.Duration(ms) * time.Millisecond
	} else if v := os.Getenv(pollIntervalEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", pollIntervalEnvVar, err)
		}
		cfg.PollInterval = d
	}

	if cfg.SessionFile == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.SessionFile = filepath.Join(home, ".safetrail", "session.json")
		}
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.JWTSecret == defaultJWTSecret {
			return Config{}, fmt.Errorf("JWT_SECRET_KEY must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// IsDev reports whether the configuration targets a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
