package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Cart backends selectable with CART_BACKEND.
const (
	CartBackendCookie   = "cookie"
	CartBackendRedis    = "redis"
	CartBackendPostgres = "postgres"
	CartBackendMemory   = "memory"
)

type Config struct {
	Env         string
	LogLevel    string
	Port        uint16
	DatabaseUrl string
	BaseURL     string
	Cart        CartConfig
	Redis       RedisConfig
	RabbitMQURL string
	NATSURL     string
	Promo       PromoConfig
	Cookie      CookieConfig
	Sentry      SentryConfig
}

// CartConfig controls where carts are kept and for how long.
type CartConfig struct {
	// Backend is one of cookie, redis, postgres or memory.
	Backend string

	// Retention is how long a saved cart stays loadable. Zero disables expiry.
	Retention time.Duration

	// SweepInterval is how often expired postgres snapshots are deleted.
	SweepInterval time.Duration

	// DiscountRounding is "whole" (EGP units) or "cents".
	DiscountRounding string
}

// RedisConfig is used when Cart.Backend is redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PromoConfig describes the one-time promotional prompt.
type PromoConfig struct {
	Code    string
	Delay   time.Duration
	Percent decimal.Decimal
}

// CookieConfig scopes the storefront cookies.
type CookieConfig struct {
	Domain string
	Secure bool

	// Secret is a base64 AES-256 key. When set, the cart cookie is sealed.
	Secret string
}

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	DSN              string
	Enabled          bool
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		// Walk up directories to find .env (max 2 parent directories)
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	return loadConfig()
}

// loadConfig reads the process environment without touching .env files.
func loadConfig() (*Config, error) {
	cfg := &Config{
		Env:         getEnv("ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnvInt("PORT", 3000),
		DatabaseUrl: getEnv("DATABASE_URL", ""),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		Cart: CartConfig{
			Backend:          getEnv("CART_BACKEND", CartBackendCookie),
			Retention:        getEnvDuration("CART_RETENTION", 30*24*time.Hour),
			SweepInterval:    getEnvDuration("CART_SWEEP_INTERVAL", time.Hour),
			DiscountRounding: getEnv("DISCOUNT_ROUNDING", "whole"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(getEnvInt("REDIS_DB", 0)),
		},
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		NATSURL:     getEnv("NATS_URL", ""),
		Promo: PromoConfig{
			Code:    getEnv("PROMO_CODE", "WW10"),
			Delay:   getEnvDuration("PROMO_DELAY", 2*time.Second),
			Percent: getEnvDecimal("PROMO_PERCENT", decimal.NewFromFloat(0.10)),
		},
		Cookie: CookieConfig{
			Domain: getEnv("COOKIE_DOMAIN", ""),
			Secret: getEnv("COOKIE_SECRET", ""),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			Enabled:          getEnvBool("SENTRY_ENABLED", false), // Disabled by default for development
			Environment:      getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:          getEnv("SENTRY_RELEASE", ""),
			SampleRate:       getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),
			TracesSampleRate: getEnvFloat("SENTRY_TRACES_SAMPLE_RATE", 0.0), // Disabled by default
			Debug:            getEnvBool("SENTRY_DEBUG", false),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Secure cookies follow the environment unless set explicitly
	cfg.Cookie.Secure = getEnvBool("COOKIE_SECURE", cfg.Env == "prod")

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.Cart.DiscountRounding != "whole" && cfg.Cart.DiscountRounding != "cents" {
		slog.Default().Warn("Invalid discount rounding. Using default: whole", slog.String("value", cfg.Cart.DiscountRounding))
		cfg.Cart.DiscountRounding = "whole"
	}

	if cfg.Cart.Retention < 0 {
		return nil, fmt.Errorf("CART_RETENTION must not be negative")
	}

	if !cfg.Promo.Percent.IsPositive() || cfg.Promo.Percent.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("PROMO_PERCENT must be a fraction in (0, 1], got %s", cfg.Promo.Percent)
	}

	if cfg.Env == "prod" && cfg.Cart.Backend == CartBackendCookie && cfg.Cookie.Secret == "" {
		slog.Default().Warn("COOKIE_SECRET not set, cart cookies are stored unsealed")
	}

	switch cfg.Cart.Backend {
	case CartBackendCookie, CartBackendMemory:
	case CartBackendRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("REDIS_ADDR required when CART_BACKEND=redis")
		}
	case CartBackendPostgres:
		if cfg.DatabaseUrl == "" {
			return nil, fmt.Errorf("DATABASE_URL required when CART_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown CART_BACKEND %q", cfg.Cart.Backend)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Default().Warn("Invalid duration. Using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
		slog.Default().Warn("Invalid decimal. Using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}
