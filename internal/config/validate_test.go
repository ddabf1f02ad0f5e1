package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB: DBConfig{
			Host: "localhost", Port: 5432, User: "agencydesk",
			Password: "secret", Name: "agencydesk", SSLMode: "disable", MaxConns: 25,
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		JWT: JWTConfig{
			AccessSecret:  strings.Repeat("a", 32),
			RefreshSecret: strings.Repeat("b", 32),
		},
		Quota:     QuotaConfig{DailyLimit: 50, PageSize: 10},
		RateLimit: RateLimitConfig{AuthMaxRequests: 10, AuthWindowSec: 60},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_ShortJWTSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = "short"
	cfg.JWT.RefreshSecret = "short2"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
}

func TestValidate_IdenticalJWTSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.RefreshSecret = cfg.JWT.AccessSecret

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestValidate_MissingDBPassword(t *testing.T) {
	cfg := validConfig()
	cfg.DB.Password = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestValidate_QuotaBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Quota.DailyLimit = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUOTA_DAILY_LIMIT")

	cfg = validConfig()
	cfg.Quota.PageSize = 0
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUOTA_PAGE_SIZE")

	// A page that costs more than the whole daily limit can never be served.
	cfg = validConfig()
	cfg.Quota.DailyLimit = 5
	cfg.Quota.PageSize = 10
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not exceed")
}

func TestValidate_PortRanges(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.DB.Port = 70000
	cfg.Redis.Port = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "DB_PORT")
	assert.Contains(t, err.Error(), "REDIS_PORT")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.JWT.AccessSecret = ""
	cfg.DB.Password = ""
	cfg.Quota.PageSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.GreaterOrEqual(t, strings.Count(err.Error(), "\n"), 3)
}
