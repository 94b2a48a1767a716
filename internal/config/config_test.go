package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setPostgresEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "dev")
	t.Setenv("DB_NAME", "devconnector")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setPostgresEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TOKEN_MAX_AGE", "")
	t.Setenv("RESET_TOKEN_TTL", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 4*time.Hour, cfg.ResetTTL())
	assert.False(t, cfg.MediaEnabled())
	assert.False(t, cfg.EnvFileLoaded, "no .env next to the package")
}

func TestLoadConfig_PostgresNeedsDatabase(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_NAME, DB_USER")
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("TOKEN_MAX_AGE", "60")
	t.Setenv("CLIENT_URL", "https://dev.example.com/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, time.Minute, cfg.TokenTTL())
	assert.Equal(t, "https://dev.example.com", cfg.ClientURL)
}

func TestLoadConfig_InvalidIntFallsBack(t *testing.T) {
	setPostgresEnv(t)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TOKEN_MAX_AGE", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 259200, cfg.TokenMaxAge)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{JWTSecret: "s", StoreDriver: DriverPostgres, DBHost: "h", DBUser: "u", DBName: "n"}, false},
		{"mongo needs no DB_*", Config{JWTSecret: "s", StoreDriver: DriverMongo}, false},
		{"postgres without DB_*", Config{JWTSecret: "s", StoreDriver: DriverPostgres}, true},
		{"missing secret", Config{StoreDriver: DriverMongo}, true},
		{"unknown driver", Config{JWTSecret: "s", StoreDriver: "sqlite"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
