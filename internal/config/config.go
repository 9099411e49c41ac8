package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Represents the runtime settings of the service, read from the environment.
type Config struct {
	DatabaseURL string
	Port        string
	SeedPath    string

	// RedisAddr enables the scan cache when set.
	RedisAddr    string
	ScanCacheTTL time.Duration

	ProjectWaypoints  bool
	MaxCommitAttempts int

	LogLevel  string
	LogFormat string

	TracingEnabled     bool
	TracingServiceName string
}

// LoadDotEnv loads a .env file when present. A missing file is not an error.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the Config from the environment, after loading .env.
func Load() (Config, error) {
	LoadDotEnv()

	cfg := Config{
		DatabaseURL:        Get("DATABASE_URL", ""),
		Port:               Get("PORT", "8080"),
		SeedPath:           Get("SEED_PATH", "data/seeds/network.yaml"),
		RedisAddr:          Get("REDIS_ADDR", ""),
		LogLevel:           Get("LOG_LEVEL", "info"),
		LogFormat:          Get("LOG_FORMAT", "text"),
		TracingServiceName: Get("TRACING_SERVICE_NAME", "disposal-route-service"),
	}

	var err error
	if cfg.ScanCacheTTL, err = time.ParseDuration(Get("SCAN_CACHE_TTL", "5m")); err != nil {
		return Config{}, fmt.Errorf("load config: SCAN_CACHE_TTL: %w", err)
	}
	if cfg.ProjectWaypoints, err = strconv.ParseBool(Get("ROUTE_PROJECT_WAYPOINTS", "false")); err != nil {
		return Config{}, fmt.Errorf("load config: ROUTE_PROJECT_WAYPOINTS: %w", err)
	}
	if cfg.TracingEnabled, err = strconv.ParseBool(Get("TRACING_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("load config: TRACING_ENABLED: %w", err)
	}
	if cfg.MaxCommitAttempts, err = strconv.Atoi(Get("MAX_COMMIT_ATTEMPTS", "3")); err != nil {
		return Config{}, fmt.Errorf("load config: MAX_COMMIT_ATTEMPTS: %w", err)
	}
	if cfg.MaxCommitAttempts < 1 {
		return Config{}, fmt.Errorf("load config: MAX_COMMIT_ATTEMPTS must be at least 1, got %d", cfg.MaxCommitAttempts)
	}

	return cfg, nil
}
