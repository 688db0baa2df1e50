package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := FromEnv(envMap(nil))
	require.NoError(t, err)
	require.Equal(t, "3000", cfg.Port)
	require.Equal(t, 24, cfg.JWT.TTLHours)
	require.Equal(t, "info", cfg.LogLevel)
	require.True(t, cfg.DefaultDiscountPercent.Equal(decimal.NewFromInt(20)))
	require.Contains(t, cfg.Database.DSN(), "dbname=pos")
	require.Contains(t, cfg.Database.DSN(), "TimeZone=UTC")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":                     "8080",
		"DATABASE_URL":             "postgres://pos:pos@db:5432/pos",
		"JWT_TTL_HOURS":            "8",
		"LOG_LEVEL":                "DEBUG",
		"DEFAULT_DISCOUNT_PERCENT": "12.5",
	}))
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "postgres://pos:pos@db:5432/pos", cfg.Database.DSN())
	require.Equal(t, 8, cfg.JWT.TTLHours)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.DefaultDiscountPercent.Equal(decimal.RequireFromString("12.5")))
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	_, err := FromEnv(envMap(map[string]string{"JWT_TTL_HOURS": "zero"}))
	require.Error(t, err)

	_, err = FromEnv(envMap(map[string]string{"DEFAULT_DISCOUNT_PERCENT": "150"}))
	require.Error(t, err)

	_, err = FromEnv(envMap(map[string]string{"DEFAULT_DISCOUNT_PERCENT": "-5"}))
	require.Error(t, err)
}
