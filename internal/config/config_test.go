package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Password: "pw"},
		JWT:      JWTConfig{Secret: "s3cret", AccessTokenTTL: 30 * time.Minute},
	}
}

func TestValidate_RequiresJWTSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.JWT.Secret = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_RequiresDBPassword(t *testing.T) {
	cfg := baseConfig()
	cfg.Database.Password = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestValidate_RejectsNonPositiveTTL(t *testing.T) {
	cfg := baseConfig()
	cfg.JWT.AccessTokenTTL = 0
	require.Error(t, cfg.Validate())
}

func TestGetDSN(t *testing.T) {
	cfg := baseConfig()
	cfg.Database = DatabaseConfig{
		Host:        "db.example.com",
		Port:        "5432",
		User:        "app",
		Password:    "pw",
		Name:        "taskmanager",
		SSLMode:     "require",
		ConnTimeout: 10 * time.Second,
	}
	assert.Equal(t,
		"postgres://app:pw@db.example.com:5432/taskmanager?sslmode=require&connect_timeout=10",
		cfg.GetDSN())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "value")
	t.Setenv("X_DUR", "45s")
	t.Setenv("X_INT", "12")
	t.Setenv("X_BOOL", "true")
	t.Setenv("X_SLICE", "a, b ,c")

	assert.Equal(t, "value", getEnv("X_STR", "fallback"))
	assert.Equal(t, "fallback", getEnv("X_MISSING", "fallback"))
	assert.Equal(t, 45*time.Second, getDurationEnv("X_DUR", time.Minute))
	assert.Equal(t, time.Minute, getDurationEnv("X_MISSING", time.Minute))
	assert.Equal(t, int32(12), getInt32Env("X_INT", 5))
	assert.True(t, getBoolEnv("X_BOOL", false))
	assert.Equal(t, []string{"a", "b", "c"}, getStringSliceEnv("X_SLICE", nil))
}
