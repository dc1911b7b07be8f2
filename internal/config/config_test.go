package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.toml")
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, StoreMongo, cfg.Store.Driver)
	assert.Equal(t, NonceBackendStore, cfg.Nonce.Backend)
	assert.Equal(t, 0, cfg.Auth.TokenTTLMinute)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.True(t, cfg.UsingDefaultSecret())
}

func TestLoadFile_TOMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9090

[auth]
jwt_secret = "from-file"
token_ttl_minute = 30

[store]
driver = "memory"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("APP_PORT", "7070")
	t.Setenv("RABBITMQ_ENABLED", "true")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.App.Port)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 30, cfg.Auth.TokenTTLMinute)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.False(t, cfg.UsingDefaultSecret())
}

func TestLoadFile_SecretAndDatabaseURLFromEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cr3t")
	t.Setenv("DATABASE_URL", "mongodb://db:27017/conduit")

	cfg, err := LoadFile(missingFile(t))
	require.NoError(t, err)

	assert.Equal(t, "s3cr3t", cfg.Auth.JWTSecret)
	assert.Equal(t, "mongodb://db:27017/conduit", cfg.Mongo.URI)
}

func TestLoadFile_RejectsDefaultSecretInProd(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)

	_, err := LoadFile(missingFile(t))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store.Driver = "postgres" }},
		{"unknown nonce backend", func(c *Config) { c.Nonce.Backend = "etcd" }},
		{"empty secret", func(c *Config) { c.Auth.JWTSecret = "  " }},
		{"negative ttl", func(c *Config) { c.Auth.TokenTTLMinute = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetEnvAsIntFallback(t *testing.T) {
	t.Setenv("APP_PORT", "not-a-number")
	assert.Equal(t, 8080, getEnvAsInt("APP_PORT", 8080))
}
