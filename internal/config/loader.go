package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all service settings.
const envPrefix = "MARKSENTINEL"

// newViper builds a pre-configured viper instance: YAML file type,
// MARKSENTINEL_ env prefix, automatic env binding, and a key replacer that
// maps "." to "_" so nested keys like "database.host" resolve to
// "MARKSENTINEL_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindKeys(v)
	return v
}

// bindKeys registers every known configuration key with viper.  Unmarshal
// only sees environment overrides for keys viper knows about, so env-only
// loading (LoadFromEnv) depends on this explicit binding.
func bindKeys(v *viper.Viper) {
	keys := []string{
		"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
		"server.shutdown_timeout", "server.rate_limit_rps",
		"database.host", "database.port", "database.user", "database.password",
		"database.db_name", "database.ssl_mode", "database.max_conns",
		"database.max_idle_conns", "database.conn_max_lifetime", "database.migration_path",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size",
		"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
		"redis.default_ttl", "redis.key_prefix",
		"kafka.brokers", "kafka.group_id", "kafka.producer_retries",
		"kafka.batch_size", "kafka.required_acks",
		"registry.base_url", "registry.api_key", "registry.request_interval",
		"registry.timeout", "registry.max_retries", "registry.cache_ttl",
		"registry.use_fallback",
		"scheduler.tick_spec", "scheduler.batch_size", "scheduler.check_timeout",
		"sources.domain_api_url", "sources.marketplace_api_url", "sources.social_api_url",
		"sources.domain_zones", "sources.marketplace_platforms", "sources.social_platforms",
		"sources.request_timeout", "sources.synthetic",
		"worker.concurrency", "worker.queue_depth", "worker.max_retries",
		"worker.retry_backoff", "worker.metrics_port", "worker.enable_profiler",
		"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

// Load reads the YAML file at configPath, merges MARKSENTINEL_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from MARKSENTINEL_* environment
// variables with no config file required.  This is the preferred strategy
// for containerised deployments.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed Config
// whenever the file changes on disk.  Intended for hot-reloading non-critical
// settings such as log level and scheduler batch size; callers are
// responsible for applying only the safe subset of changes at runtime.
//
// Watch is non-blocking; viper manages the background goroutine.  If the
// changed file fails to parse or validate, onChange is not called.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read. Errors are ignored here; callers should call Load first.
	_ = v.ReadInConfig()

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad wraps Load and panics on any error.  Intended for use in main()
// where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
