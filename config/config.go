package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	FrontendURL  string
	SecureCookie bool

	// Cart pricing policy
	FlatShipping          decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	TaxRate               decimal.Decimal

	CartMaxAttempts int
}

func LoadEnv() error {
	// .env is optional; in production the variables are set directly
	if err := godotenv.Load(); err != nil {
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if os.Getenv("FRONTEND_URL") == "" {
		log.Warn("FRONTEND_URL not set - CORS may not work correctly")
	}
	if os.Getenv("ADMIN_PASSWORD") == "" {
		log.Warn("ADMIN_PASSWORD not set - default admin uses the built-in password")
	}

	return nil
}

// Load reads the typed configuration from the environment, applying defaults.
func Load() Config {
	return Config{
		AppEnv:   GetEnv("APP_ENV", "development"),
		LogLevel: GetEnv("LOG_LEVEL", "info"),
		Port:     GetEnv("PORT", "8080"),

		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MaxOpenConns:    GetEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    GetEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: GetEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		FrontendURL:  GetEnv("FRONTEND_URL", "http://localhost:3000"),
		SecureCookie: GetEnvBool("SECURE_COOKIES", false),

		FlatShipping:          GetEnvDecimal("SHIPPING_FLAT_RATE", decimal.NewFromInt(10)),
		FreeShippingThreshold: GetEnvDecimal("FREE_SHIPPING_THRESHOLD", decimal.NewFromInt(100)),
		TaxRate:               GetEnvDecimal("TAX_RATE", decimal.RequireFromString("0.15")),

		CartMaxAttempts: GetEnvInt("CART_MAX_ATTEMPTS", 3),
	}
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warnf("invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func GetEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warnf("invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func GetEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil || d.IsNegative() {
		log.Warnf("invalid amount for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
