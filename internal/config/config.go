package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	Environment       string
	ServiceName       string
	APIBaseURL        string
	HTTPTimeout       time.Duration
	RateLimitRPM      int
	SecureStorePath   string
	SecureStoreSecret string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	TelemetryEndpoint string
	TelemetryInsecure bool
	SentryDSN         string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	baseURL := strings.TrimSpace(os.Getenv("API_BASE_URL"))
	if baseURL == "" {
		return Config{}, fmt.Errorf("API_BASE_URL is required")
	}
	storeSecret := strings.TrimSpace(os.Getenv("SECURE_STORE_SECRET"))
	if storeSecret == "" {
		return Config{}, fmt.Errorf("SECURE_STORE_SECRET is required")
	}

	cfg := Config{
		Environment:       getEnv("APP_ENV", "development"),
		ServiceName:       getEnv("SERVICE_NAME", "valora-session"),
		APIBaseURL:        strings.TrimRight(baseURL, "/"),
		HTTPTimeout:       getDuration("HTTP_TIMEOUT", 15*time.Second),
		RateLimitRPM:      getInt("RATE_LIMIT_RPM", 0),
		SecureStorePath:   getEnv("SECURE_STORE_PATH", defaultStorePath()),
		SecureStoreSecret: storeSecret,
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getInt("REDIS_DB", 0),
		TelemetryEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TelemetryInsecure: getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
	}

	return cfg, nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".valora-session/credentials"
	}
	return filepath.Join(home, ".valora-session", "credentials")
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(v) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}
