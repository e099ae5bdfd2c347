// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Lending  LendingConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// LendingConfig carries the policy knobs of the loan product. The day rate
// and fee percents are expressed as percentages (0.2 means 0.2% per day).
type LendingConfig struct {
	DayRatePercent       decimal.Decimal
	ProcessingFeePercent decimal.Decimal
	GSTPercent           decimal.Decimal
	ExtensionFeePercent  decimal.Decimal
	ExtensionDays        int
	MaxExtensions        int
	BaseTenureDays       int
	InstallmentStepDays  int
	LoanLimitCeiling     decimal.Decimal
	StudentBaseLimit     decimal.Decimal
	GraduateLimit        decimal.Decimal
	SalariedMaxAge       int
	StudentMinAge        int
	GeneralMinAge        int
	GeneralMaxAge        int
	DashboardCacheTTL    time.Duration
	GateGuardTTL         time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:      normalizeRedisURL(getEnv("REDIS_URL", "localhost:6379")),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "change-this-secret"),
			Expiration: getDurationEnv("JWT_EXPIRATION", 15*time.Minute),
		},
		Lending: LendingConfig{
			DayRatePercent:       getDecimalEnv("LOAN_DAY_RATE_PERCENT", "0.2"),
			ProcessingFeePercent: getDecimalEnv("LOAN_PROCESSING_FEE_PERCENT", "10"),
			GSTPercent:           getDecimalEnv("LOAN_GST_PERCENT", "18"),
			ExtensionFeePercent:  getDecimalEnv("LOAN_EXTENSION_FEE_PERCENT", "21"),
			ExtensionDays:        getIntEnv("LOAN_EXTENSION_DAYS", 30),
			MaxExtensions:        getIntEnv("LOAN_MAX_EXTENSIONS", 4),
			BaseTenureDays:       getIntEnv("LOAN_BASE_TENURE_DAYS", 165),
			InstallmentStepDays:  getIntEnv("LOAN_INSTALLMENT_STEP_DAYS", 30),
			LoanLimitCeiling:     getDecimalEnv("LOAN_LIMIT_CEILING", "45600"),
			StudentBaseLimit:     getDecimalEnv("LOAN_STUDENT_BASE_LIMIT", "10000"),
			GraduateLimit:        getDecimalEnv("LOAN_GRADUATE_LIMIT", "25000"),
			SalariedMaxAge:       getIntEnv("LOAN_SALARIED_MAX_AGE", 45),
			StudentMinAge:        getIntEnv("LOAN_STUDENT_MIN_AGE", 19),
			GeneralMinAge:        getIntEnv("LOAN_GENERAL_MIN_AGE", 21),
			GeneralMaxAge:        getIntEnv("LOAN_GENERAL_MAX_AGE", 60),
			DashboardCacheTTL:    getDurationEnv("DASHBOARD_CACHE_TTL", 5*time.Minute),
			GateGuardTTL:         getDurationEnv("GATE_GUARD_TTL", 2*time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func normalizeRedisURL(url string) string {
	// Strip redis:// or redis+tls:// scheme if present
	if strings.HasPrefix(url, "redis+tls://") {
		return url[len("redis+tls://"):]
	}
	if strings.HasPrefix(url, "redis://") {
		return url[len("redis://"):]
	}
	return url
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getDecimalEnv(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}
