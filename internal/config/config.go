package config

import (
	"errors"
	"fmt"
	"log"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env        string
	ServerPort string
	LogLevel   string

	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	JWTSecret string
	TokenTTL  time.Duration

	LessonsPath string
	CORSOrigins []string

	AuthRateLimit  int
	AuthRateWindow time.Duration
	// TrustedProxies are addresses or CIDRs allowed to set X-Forwarded-For
	TrustedProxies []string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string
}

// Load reads configuration from a .env file (if present) and environment
// variables, falling back to defaults
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		Env:            getEnv("APP_ENV", "local"),
		ServerPort:     getEnv("PORT", "3000"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./nodeacademy.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		LessonsPath:    getEnv("LESSONS_PATH", ""),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: getEnvDuration("AUTH_RATE_WINDOW", time.Minute),
		TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),
		AWSRegion:      getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail:   getEnv("SES_FROM_EMAIL", ""),
		SESFromName:    getEnv("SES_FROM_NAME", "Node Academy"),
		AppBaseURL:     getEnv("APP_BASE_URL", "http://localhost:3000"),
	}
}

// Validate checks that the configuration can be used to start the server
func (c *Config) Validate() error {
	var errs []error

	if c.ServerPort == "" {
		errs = append(errs, errors.New("PORT cannot be empty"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}

	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
		if c.DatabasePath == "" {
			errs = append(errs, errors.New("DB_PATH cannot be empty for sqlite"))
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL must be set for %s", c.DatabaseType))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_TYPE %q", c.DatabaseType))
	}

	if c.AuthRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT must be positive, got %d", c.AuthRateLimit))
	}
	if c.AuthRateWindow <= 0 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_WINDOW must be positive, got %s", c.AuthRateWindow))
	}

	for _, proxy := range c.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			errs = append(errs, fmt.Errorf("TRUSTED_PROXIES entry %q is not an address or CIDR", proxy))
		}
	}

	return errors.Join(errs...)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, defaultValue)
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
