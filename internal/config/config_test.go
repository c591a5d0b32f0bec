package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.APIPort)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
}

func TestLoad_JWTExpirationHours(t *testing.T) {
	t.Run("valid value", func(t *testing.T) {
		t.Setenv("JWT_EXPIRATION_HOURS", "72")
		assert.Equal(t, 72*time.Hour, Load().JWTExpiration)
	})

	t.Run("malformed value falls back to default", func(t *testing.T) {
		t.Setenv("JWT_EXPIRATION_HOURS", "one day")
		assert.Equal(t, 24*time.Hour, Load().JWTExpiration)
	})

	t.Run("non-positive value falls back to default", func(t *testing.T) {
		t.Setenv("JWT_EXPIRATION_HOURS", "0")
		assert.Equal(t, 24*time.Hour, Load().JWTExpiration)
	})
}
