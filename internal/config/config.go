// Package config defines all configuration structures for MarkSentinel.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitRPS    int           `mapstructure:"rate_limit_rps"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// MigrationPath is a migrate source URL, e.g. "file://migrations".
	// Empty disables startup migrations.
	MigrationPath string `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.  Redis caches registry
// search responses so repeated keyword lookups within a check window do not
// hit the upstream registry.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer parameters for check and alert events.
type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	GroupID         string   `mapstructure:"group_id"`
	ProducerRetries int      `mapstructure:"producer_retries"`
	BatchSize       int      `mapstructure:"batch_size"`
	RequiredAcks    int      `mapstructure:"required_acks"`
}

// RegistryConfig holds trademark registry client parameters.
type RegistryConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`

	// RequestInterval is the minimum gap enforced between consecutive
	// registry requests across the whole process.
	RequestInterval time.Duration `mapstructure:"request_interval"`

	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`

	// UseFallback enables the local fallback provider when the upstream
	// registry is unreachable or returns malformed data.
	UseFallback bool `mapstructure:"use_fallback"`
}

// SchedulerConfig holds monitoring scheduler parameters.
type SchedulerConfig struct {
	// TickSpec is a cron expression controlling how often due items are
	// collected and dispatched.
	TickSpec string `mapstructure:"tick_spec"`

	// BatchSize caps the number of items dispatched per tick.
	BatchSize int `mapstructure:"batch_size"`

	CheckTimeout time.Duration `mapstructure:"check_timeout"`
}

// SourcesConfig holds scan-source parameters for the non-trademark detectors.
type SourcesConfig struct {
	DomainAPIURL      string `mapstructure:"domain_api_url"`
	MarketplaceAPIURL string `mapstructure:"marketplace_api_url"`
	SocialAPIURL      string `mapstructure:"social_api_url"`

	// Default scan scopes, used when a monitoring item does not carry its own.
	DomainZones          []string `mapstructure:"domain_zones"`
	MarketplacePlatforms []string `mapstructure:"marketplace_platforms"`
	SocialPlatforms      []string `mapstructure:"social_platforms"`

	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// Synthetic switches all scan sources to deterministic local generation,
	// used in development and integration tests.
	Synthetic bool `mapstructure:"synthetic"`
}

// WorkerConfig holds background-worker execution parameters.
type WorkerConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	QueueDepth     int           `mapstructure:"queue_depth"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	MetricsPort    int           `mapstructure:"metrics_port"`
	EnableProfiler bool          `mapstructure:"enable_profiler"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// Config is the root configuration structure for the entire service.
// Every infrastructure component and application service reads its settings
// from the relevant sub-struct.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Log       LogConfig       `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}

	if c.Registry.RequestInterval < 0 {
		return fmt.Errorf("config: registry.request_interval must not be negative")
	}
	if c.Registry.Timeout <= 0 {
		return fmt.Errorf("config: registry.timeout must be positive, got %s", c.Registry.Timeout)
	}
	if !c.Registry.UseFallback && c.Registry.BaseURL == "" {
		return fmt.Errorf("config: registry.base_url is required when fallback is disabled")
	}

	if c.Scheduler.BatchSize < 1 {
		return fmt.Errorf("config: scheduler.batch_size must be >= 1, got %d", c.Scheduler.BatchSize)
	}
	if c.Scheduler.CheckTimeout <= 0 {
		return fmt.Errorf("config: scheduler.check_timeout must be positive, got %s", c.Scheduler.CheckTimeout)
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be >= 1, got %d", c.Worker.Concurrency)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
