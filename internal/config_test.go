package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "LOG_LEVEL", "PORT", "DATABASE_URL", "CART_BACKEND", "CART_RETENTION", "PROMO_CODE", "PROMO_DELAY", "PROMO_PERCENT", "DISCOUNT_ROUNDING", "COOKIE_SECURE"} {
		t.Setenv(key, "")
	}

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, uint16(3000), cfg.Port)
	assert.Equal(t, CartBackendCookie, cfg.Cart.Backend)
	assert.Equal(t, 720*time.Hour, cfg.Cart.Retention)
	assert.Equal(t, "whole", cfg.Cart.DiscountRounding)
	assert.Equal(t, "WW10", cfg.Promo.Code)
	assert.Equal(t, 2*time.Second, cfg.Promo.Delay)
	assert.Equal(t, "0.1", cfg.Promo.Percent.String())
	assert.False(t, cfg.Cookie.Secure)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("CART_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CART_RETENTION", "0s")
	t.Setenv("PROMO_DELAY", "500ms")
	t.Setenv("PROMO_PERCENT", "0.15")
	t.Setenv("DISCOUNT_ROUNDING", "cents")
	t.Setenv("LOG_LEVEL", "verbose")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, CartBackendRedis, cfg.Cart.Backend)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Zero(t, cfg.Cart.Retention)
	assert.Equal(t, 500*time.Millisecond, cfg.Promo.Delay)
	assert.Equal(t, "0.15", cfg.Promo.Percent.String())
	assert.Equal(t, "cents", cfg.Cart.DiscountRounding)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Cookie.Secure)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"CART_BACKEND": "dynamo"}},
		{"redis without address", map[string]string{"CART_BACKEND": "redis", "REDIS_ADDR": ""}},
		{"postgres without database", map[string]string{"CART_BACKEND": "postgres", "DATABASE_URL": ""}},
		{"negative retention", map[string]string{"CART_RETENTION": "-1h"}},
		{"promo percent above one", map[string]string{"PROMO_PERCENT": "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := loadConfig()
			assert.Error(t, err)
		})
	}
}
