package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	require.NoError(t, os.Unsetenv("JWT_EXPIRATION_HOURS"))

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
}

func TestNewJWTConfig_CustomExpiration(t *testing.T) {
	tests := []struct {
		name          string
		expiration    string
		expectedHours int
	}{
		{name: "custom expiration 12 hours", expiration: "12", expectedHours: 12},
		{name: "minimum expiration 1 hour", expiration: "1", expectedHours: 1},
		{name: "one week", expiration: "168", expectedHours: 168},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret-key")
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)

			cfg, err := NewJWTConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.expectedHours, cfg.ExpirationHours)
		})
	}
}

func TestNewJWTConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	cfg, err := NewJWTConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewJWTConfig_InvalidExpiration(t *testing.T) {
	for _, expiration := range []string{"invalid", "0", "-1", "12.5"} {
		t.Run(expiration, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "test-secret-key")
			t.Setenv("JWT_EXPIRATION_HOURS", expiration)

			cfg, err := NewJWTConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "JWT_EXPIRATION_HOURS")
		})
	}
}
