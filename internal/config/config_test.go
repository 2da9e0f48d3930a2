package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeacademy/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		ServerPort:     "3000",
		DatabaseType:   "sqlite",
		DatabasePath:   "test.db",
		JWTSecret:      "secret",
		TokenTTL:       7 * 24 * time.Hour,
		AuthRateLimit:  20,
		AuthRateWindow: time.Minute,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_DatabaseType(t *testing.T) {
	tests := []struct {
		name    string
		dbType  string
		url     string
		wantErr string
	}{
		{name: "postgres without url", dbType: "postgres", wantErr: "DATABASE_URL"},
		{name: "mysql without url", dbType: "mysql", wantErr: "DATABASE_URL"},
		{name: "postgres with url", dbType: "postgres", url: "postgres://localhost/db"},
		{name: "unknown type", dbType: "oracle", wantErr: "unsupported DB_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.DatabaseType = tt.dbType
			cfg.DatabaseURL = tt.url

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	cfg.TokenTTL = 0
	cfg.AuthRateLimit = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "TOKEN_TTL")
	assert.Contains(t, err.Error(), "AUTH_RATE_LIMIT")
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/academy")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "48h")
	t.Setenv("AUTH_RATE_LIMIT", "not-a-number")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,127.0.0.1")

	cfg := config.Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, 48*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 20, cfg.AuthRateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_TrustedProxies(t *testing.T) {
	cfg := validConfig()
	cfg.TrustedProxies = []string{"10.0.0.0/8", "::1", "172.16.0.1"}
	assert.NoError(t, cfg.Validate())

	cfg.TrustedProxies = []string{"10.0.0.0/8", "lb.internal"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRUSTED_PROXIES")
}
