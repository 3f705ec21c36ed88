package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	JWTSecret   string

	// Entitlement resolution.
	EntitlementMode     string // "db", "http" or "static"
	EntitlementURL      string
	EntitlementAPIKey   string
	EntitlementStatic   string
	EntitlementCacheTTL time.Duration
	EntitlementTimeout  time.Duration
	EntitlementFailOpen bool

	// Quota limits per tier.
	FreeCharLimit     int
	FreeDailyLimit    int
	PremiumCharLimit  int
	PremiumDailyLimit int

	StoreTimeout time.Duration

	GeoIPDBPath        string
	CORSAllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		EntitlementMode:     getEnv("ENTITLEMENT_MODE", "db"),
		EntitlementURL:      os.Getenv("ENTITLEMENT_URL"),
		EntitlementAPIKey:   os.Getenv("ENTITLEMENT_API_KEY"),
		EntitlementStatic:   getEnv("ENTITLEMENT_STATIC_TIER", "free"),
		EntitlementCacheTTL: time.Second * time.Duration(getEnvInt("ENTITLEMENT_CACHE_TTL_SECONDS", 30)),
		EntitlementTimeout:  time.Second * time.Duration(getEnvInt("ENTITLEMENT_TIMEOUT_SECONDS", 5)),
		EntitlementFailOpen: getEnvBool("ENTITLEMENT_FAIL_OPEN", false),

		FreeCharLimit:     getEnvInt("FREE_CHAR_LIMIT", 200),
		FreeDailyLimit:    getEnvInt("FREE_DAILY_LIMIT", 5),
		PremiumCharLimit:  getEnvInt("PREMIUM_CHAR_LIMIT", 2000),
		PremiumDailyLimit: getEnvInt("PREMIUM_DAILY_LIMIT", 50),

		StoreTimeout: time.Second * time.Duration(getEnvInt("STORE_TIMEOUT_SECONDS", 5)),

		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" && cfg.EntitlementMode != "static" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.EntitlementMode == "http" && cfg.EntitlementURL == "" {
		return nil, fmt.Errorf("ENTITLEMENT_URL is required when ENTITLEMENT_MODE=http")
	}

	return cfg, nil
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
