package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds every runtime setting of the API process.
type Config struct {
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	LogLevel string

	DefaultDiscountPercent decimal.Decimal

	AdminEmail    string
	AdminPassword string
}

type DatabaseConfig struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	TimeZone string
}

type JWTConfig struct {
	Secret   string
	TTLHours int
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the parts.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.TimeZone,
	)
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function so tests can inject values.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port: get("PORT", "3000"),
		Database: DatabaseConfig{
			URL:      get("DATABASE_URL", ""),
			Host:     get("DB_HOST", "localhost"),
			User:     get("DB_USER", "postgres"),
			Password: get("DB_PASSWORD", ""),
			Name:     get("DB_NAME", "pos"),
			Port:     get("DB_PORT", "5432"),
			TimeZone: get("DB_TIMEZONE", "UTC"),
		},
		JWT: JWTConfig{
			Secret: get("JWT_SECRET", "change-me-in-production"),
		},
		LogLevel:      strings.ToLower(get("LOG_LEVEL", "info")),
		AdminEmail:    get("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: get("ADMIN_PASSWORD", "admin123"),
	}

	ttl, err := strconv.Atoi(get("JWT_TTL_HOURS", "24"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("config: JWT_TTL_HOURS must be a positive integer, got %q", getenv("JWT_TTL_HOURS"))
	}
	cfg.JWT.TTLHours = ttl

	pct, err := decimal.NewFromString(get("DEFAULT_DISCOUNT_PERCENT", "20"))
	if err != nil || !pct.IsPositive() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("config: DEFAULT_DISCOUNT_PERCENT must be within (0, 100], got %q", getenv("DEFAULT_DISCOUNT_PERCENT"))
	}
	cfg.DefaultDiscountPercent = pct

	return cfg, nil
}
