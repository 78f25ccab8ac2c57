package config

import "time"

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "marksentinel"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 15 * time.Minute
	DefaultRedisKeyPrefix = "marksentinel:"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "marksentinel-workers"

	DefaultRegistryInterval = time.Second
	DefaultRegistryTimeout  = 10 * time.Second
	DefaultRegistryCacheTTL = 10 * time.Minute

	DefaultSchedulerTickSpec  = "@every 1m"
	DefaultSchedulerBatchSize = 50
	DefaultCheckTimeout       = 2 * time.Minute

	DefaultWorkerConcurrency = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling and before Validate so that
// optional-but-defaulted fields are never seen as missing.  Fields already
// set by the caller are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}

	if cfg.Registry.RequestInterval == 0 {
		cfg.Registry.RequestInterval = DefaultRegistryInterval
	}
	if cfg.Registry.Timeout == 0 {
		cfg.Registry.Timeout = DefaultRegistryTimeout
	}
	if cfg.Registry.CacheTTL == 0 {
		cfg.Registry.CacheTTL = DefaultRegistryCacheTTL
	}

	if cfg.Scheduler.TickSpec == "" {
		cfg.Scheduler.TickSpec = DefaultSchedulerTickSpec
	}
	if cfg.Scheduler.BatchSize == 0 {
		cfg.Scheduler.BatchSize = DefaultSchedulerBatchSize
	}
	if cfg.Scheduler.CheckTimeout == 0 {
		cfg.Scheduler.CheckTimeout = DefaultCheckTimeout
	}

	if cfg.Sources.RequestTimeout == 0 {
		cfg.Sources.RequestTimeout = 10 * time.Second
	}
	if len(cfg.Sources.MarketplacePlatforms) == 0 {
		cfg.Sources.MarketplacePlatforms = []string{"amazon", "ebay", "etsy", "aliexpress"}
	}
	if len(cfg.Sources.SocialPlatforms) == 0 {
		cfg.Sources.SocialPlatforms = []string{"twitter", "instagram", "facebook", "tiktok"}
	}
	if len(cfg.Sources.DomainZones) == 0 {
		cfg.Sources.DomainZones = []string{".com", ".net", ".org", ".io", ".shop"}
	}

	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = 5 * time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
