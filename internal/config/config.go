// Package config loads storefront settings from defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv     string           `yaml:"app_env"`
	LogLevel   string           `yaml:"log_level"`
	HTTP       HTTPConfig       `yaml:"http"`
	Session    SessionConfig    `yaml:"session"`
	Redis      RedisConfig      `yaml:"redis"`
	Receipts   ReceiptsConfig   `yaml:"receipts"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Storefront StorefrontConfig `yaml:"storefront"`
}

type HTTPConfig struct {
	Port               string        `yaml:"port"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	MaxRequestBodySize int64         `yaml:"max_request_body_size"`
	// StaticDir, when set, is served under /images.
	StaticDir string `yaml:"static_dir"`
}

type SessionConfig struct {
	Store           string        `yaml:"store"` // memory | redis
	IdleTTL         time.Duration `yaml:"idle_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	CookieName      string        `yaml:"cookie_name"`
	CookieSecure    bool          `yaml:"cookie_secure"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ReceiptsConfig struct {
	Store               string        `yaml:"store"` // sqlite | mongo | none
	SQLitePath          string        `yaml:"sqlite_path"`
	MongoURI            string        `yaml:"mongo_uri"`
	MongoDB             string        `yaml:"mongo_db"`
	MongoMaxPoolSize    uint64        `yaml:"mongo_max_pool_size"`
	MongoConnectTimeout time.Duration `yaml:"mongo_connect_timeout"`
}

// KafkaConfig enables checkout events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	// GroupID is the consumer group of the receipt projector.
	GroupID string `yaml:"group_id"`
}

type StorefrontConfig struct {
	AckDuration             time.Duration `yaml:"ack_duration"`
	MenuCloseDelay          time.Duration `yaml:"menu_close_delay"`
	ResetQuantityOnCheckout bool          `yaml:"reset_quantity_on_checkout"`
}

func Default() *Config {
	return &Config{
		AppEnv:   "dev",
		LogLevel: "info",
		HTTP: HTTPConfig{
			Port:               "8080",
			RequestTimeout:     30 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			MaxRequestBodySize: 1 << 20, // 1MB
		},
		Session: SessionConfig{
			Store:           "memory",
			IdleTTL:         30 * time.Minute,
			CleanupInterval: time.Minute,
			CookieName:      "storefront_session",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Receipts: ReceiptsConfig{
			Store:               "sqlite",
			SQLitePath:          "storefront.db",
			MongoURI:            "mongodb://localhost:27017",
			MongoDB:             "storefront",
			MongoMaxPoolSize:    50,
			MongoConnectTimeout: 10 * time.Second,
		},
		Kafka: KafkaConfig{
			Topic:   "storefront-checkouts",
			GroupID: "storefront-receipts",
		},
		Storefront: StorefrontConfig{
			AckDuration:    700 * time.Millisecond,
			MenuCloseDelay: 200 * time.Millisecond,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path falls back to STOREFRONT_CONFIG; a missing file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("STOREFRONT_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.HTTP.Port = getEnv("HTTP_PORT", c.HTTP.Port)
	c.HTTP.RequestTimeout = getEnvDuration("HTTP_REQUEST_TIMEOUT", c.HTTP.RequestTimeout)
	c.HTTP.ShutdownTimeout = getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", c.HTTP.ShutdownTimeout)
	c.HTTP.StaticDir = getEnv("STATIC_DIR", c.HTTP.StaticDir)

	c.Session.Store = getEnv("SESSION_STORE", c.Session.Store)
	c.Session.IdleTTL = getEnvDuration("SESSION_IDLE_TTL", c.Session.IdleTTL)
	c.Session.CookieSecure = getEnvBool("SESSION_COOKIE_SECURE", c.Session.CookieSecure)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Receipts.Store = getEnv("RECEIPTS_STORE", c.Receipts.Store)
	c.Receipts.SQLitePath = getEnv("SQLITE_PATH", c.Receipts.SQLitePath)
	c.Receipts.MongoURI = getEnv("MONGO_URI", c.Receipts.MongoURI)
	c.Receipts.MongoDB = getEnv("MONGO_DB_NAME", c.Receipts.MongoDB)
	c.Receipts.MongoMaxPoolSize = getEnvUint("MONGO_MAX_POOL_SIZE", c.Receipts.MongoMaxPoolSize)
	c.Receipts.MongoConnectTimeout = getEnvDuration("MONGO_CONNECT_TIMEOUT", c.Receipts.MongoConnectTimeout)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = strings.Split(brokers, ",")
	}
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)
	c.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", c.Kafka.GroupID)

	c.Storefront.AckDuration = getEnvDuration("ACK_DURATION", c.Storefront.AckDuration)
	c.Storefront.MenuCloseDelay = getEnvDuration("MENU_CLOSE_DELAY", c.Storefront.MenuCloseDelay)
	c.Storefront.ResetQuantityOnCheckout = getEnvBool("CHECKOUT_RESET_QUANTITY", c.Storefront.ResetQuantityOnCheckout)
}

func (c *Config) Validate() error {
	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid session store: %q (valid: memory, redis)", c.Session.Store)
	}
	switch c.Receipts.Store {
	case "sqlite", "mongo", "none":
	default:
		return fmt.Errorf("invalid receipts store: %q (valid: sqlite, mongo, none)", c.Receipts.Store)
	}
	if c.HTTP.Port == "" {
		return errors.New("http port is required")
	}
	if c.Session.CookieName == "" {
		return errors.New("session cookie name is required")
	}
	if c.Storefront.AckDuration <= 0 || c.Storefront.MenuCloseDelay <= 0 {
		return errors.New("storefront durations must be positive")
	}
	return nil
}

// KafkaEnabled reports whether checkout events go to a broker.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
