package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "sqlite", cfg.Receipts.Store)
	assert.Equal(t, 700*time.Millisecond, cfg.Storefront.AckDuration)
	assert.Equal(t, 200*time.Millisecond, cfg.Storefront.MenuCloseDelay)
	assert.False(t, cfg.Storefront.ResetQuantityOnCheckout)
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "storefront_session", cfg.Session.CookieName)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	data := `
app_env: prod
http:
  port: "9090"
session:
  store: redis
  idle_ttl: 1h
kafka:
  brokers: ["kafka:9092"]
storefront:
  ack_duration: 1s
  reset_quantity_on_checkout: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, time.Hour, cfg.Session.IdleTTL)
	assert.Equal(t, time.Second, cfg.Storefront.AckDuration)
	assert.True(t, cfg.Storefront.ResetQuantityOnCheckout)
	assert.True(t, cfg.KafkaEnabled())
	// Untouched keys keep their defaults.
	assert.Equal(t, 200*time.Millisecond, cfg.Storefront.MenuCloseDelay)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [oops"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Run("env wins over file values", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "7000")
		t.Setenv("CHECKOUT_RESET_QUANTITY", "true")
		t.Setenv("ACK_DURATION", "1500ms")
		t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")
		t.Setenv("REDIS_DB", "3")
		t.Setenv("MONGO_MAX_POOL_SIZE", "20")
		t.Setenv("MONGO_CONNECT_TIMEOUT", "3s")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "7000", cfg.HTTP.Port)
		assert.True(t, cfg.Storefront.ResetQuantityOnCheckout)
		assert.Equal(t, 1500*time.Millisecond, cfg.Storefront.AckDuration)
		assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, 3, cfg.Redis.DB)
		assert.Equal(t, uint64(20), cfg.Receipts.MongoMaxPoolSize)
		assert.Equal(t, 3*time.Second, cfg.Receipts.MongoConnectTimeout)
	})

	t.Run("malformed values are ignored", func(t *testing.T) {
		t.Setenv("REDIS_DB", "three")
		t.Setenv("ACK_DURATION", "soon")
		t.Setenv("CHECKOUT_RESET_QUANTITY", "maybe")
		t.Setenv("MONGO_MAX_POOL_SIZE", "-1")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, 0, cfg.Redis.DB)
		assert.Equal(t, 700*time.Millisecond, cfg.Storefront.AckDuration)
		assert.False(t, cfg.Storefront.ResetQuantityOnCheckout)
		assert.Equal(t, uint64(50), cfg.Receipts.MongoMaxPoolSize)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown session store", func(c *Config) { c.Session.Store = "disk" }, "invalid session store"},
		{"unknown receipts store", func(c *Config) { c.Receipts.Store = "postgres" }, "invalid receipts store"},
		{"receipts disabled", func(c *Config) { c.Receipts.Store = "none" }, ""},
		{"empty port", func(c *Config) { c.HTTP.Port = "" }, "http port is required"},
		{"zero ack", func(c *Config) { c.Storefront.AckDuration = 0 }, "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
