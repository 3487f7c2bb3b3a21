package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/openhealthcare/openehr-api/pkg/messaging/redis"
	"github.com/openhealthcare/openehr-api/pkg/worker"
)

const envPrefix = "OPENEHR"

type Config struct {
	Server    ServerConfig    `mapstructure:"server" envconfig:"SERVER"`
	Database  DatabaseConfig  `mapstructure:"database" envconfig:"DB"`
	Storage   StorageConfig   `mapstructure:"storage" envconfig:"STORAGE"`
	Redis     RedisConfig     `mapstructure:"redis" envconfig:"REDIS"`
	Outbox    OutboxConfig    `mapstructure:"outbox" envconfig:"OUTBOX"`
	Cache     CacheConfig     `mapstructure:"cache" envconfig:"CACHE"`
	Auth      AuthConfig      `mapstructure:"auth" envconfig:"AUTH"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" envconfig:"RATE_LIMIT"`
	Log       LogConfig       `mapstructure:"log" envconfig:"LOG"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" envconfig:"PORT"`
	Timeout        time.Duration `mapstructure:"timeout" envconfig:"TIMEOUT"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host" envconfig:"HOST"`
	Port         int    `mapstructure:"port" envconfig:"PORT"`
	User         string `mapstructure:"user" envconfig:"USER"`
	Password     string `mapstructure:"password" envconfig:"PASSWORD"`
	Name         string `mapstructure:"name" envconfig:"NAME"`
	SSLMode      string `mapstructure:"sslmode" envconfig:"SSLMODE"`
	MaxOpenConns int    `mapstructure:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// StorageConfig selects the record store: "postgres" or "memory".
type StorageConfig struct {
	Driver string `mapstructure:"driver" envconfig:"DRIVER"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url" envconfig:"URL"`
	Channel      string        `mapstructure:"channel" envconfig:"CHANNEL"`
	MaxRetries   int           `mapstructure:"max_retries" envconfig:"MAX_RETRIES"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" envconfig:"RETRY_BACKOFF"`
	PoolSize     int           `mapstructure:"pool_size" envconfig:"POOL_SIZE"`
	MinIdleConns int           `mapstructure:"min_idle_conns" envconfig:"MIN_IDLE_CONNS"`
}

type OutboxConfig struct {
	BatchSize       int           `mapstructure:"batch_size" envconfig:"BATCH_SIZE"`
	PollInterval    time.Duration `mapstructure:"poll_interval" envconfig:"POLL_INTERVAL"`
	RetryAttempts   int           `mapstructure:"retry_attempts" envconfig:"RETRY_ATTEMPTS"`
	RetryDelay      time.Duration `mapstructure:"retry_delay" envconfig:"RETRY_DELAY"`
	MaxRetries      int           `mapstructure:"max_retries" envconfig:"MAX_RETRIES"`
	RetainFor       time.Duration `mapstructure:"retain_for" envconfig:"RETAIN_FOR"`
	HealthCheckAddr string        `mapstructure:"health_check_addr" envconfig:"HEALTH_CHECK_ADDR"`
}

type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl" envconfig:"TTL"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" envconfig:"CLEANUP_INTERVAL"`
}

// AuthConfig enables bearer-token checks on write routes when JWTSecret
// is set.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" envconfig:"JWT_SECRET"`
	Issuer    string `mapstructure:"issuer" envconfig:"ISSUER"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" envconfig:"ENABLED"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" envconfig:"RPS"`
	Burst             int     `mapstructure:"burst" envconfig:"BURST"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" envconfig:"LEVEL"`
	Pretty bool   `mapstructure:"pretty" envconfig:"PRETTY"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "openehr")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("storage.driver", "postgres")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.channel", "openehr.records")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 5*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", time.Second)
	v.SetDefault("outbox.max_retries", 5)
	v.SetDefault("outbox.retain_for", 7*24*time.Hour)
	v.SetDefault("outbox.health_check_addr", ":8081")

	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 100.0)
	v.SetDefault("rate_limit.burst", 200)

	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml from the working directory or ./config,
// falling back to defaults when no file exists, then applies environment
// overrides such as OPENEHR_DB_HOST or OPENEHR_STORAGE_DRIVER.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(envPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Outbox.BatchSize <= 0 || c.Outbox.PollInterval <= 0 {
		return fmt.Errorf("outbox batch size and poll interval must be positive")
	}
	return nil
}

// ToBrokerConfig converts the redis section for the broker constructor.
func (c *Config) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.Redis.URL,
		MaxRetries:   c.Redis.MaxRetries,
		RetryBackoff: c.Redis.RetryBackoff,
		PoolSize:     c.Redis.PoolSize,
		MinIdleConns: c.Redis.MinIdleConns,
	}
}

// ToWorkerConfig converts the outbox section for the outbox processor.
func (c *Config) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		Channel:       c.Redis.Channel,
		BatchSize:     c.Outbox.BatchSize,
		PollInterval:  c.Outbox.PollInterval,
		RetryAttempts: c.Outbox.RetryAttempts,
		RetryDelay:    c.Outbox.RetryDelay,
		MaxRetries:    c.Outbox.MaxRetries,
	}
}
