// API server entry point for MarkSentinel.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/MarkSentinel/internal/application/detection"
	"github.com/turtacn/MarkSentinel/internal/application/items"
	"github.com/turtacn/MarkSentinel/internal/application/scheduling"
	"github.com/turtacn/MarkSentinel/internal/config"
	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/database/postgres/repositories"
	redisdb "github.com/turtacn/MarkSentinel/internal/infrastructure/database/redis"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/registry"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/scansource"
	httpserver "github.com/turtacn/MarkSentinel/internal/interfaces/http"
	"github.com/turtacn/MarkSentinel/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

var version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	logger.Info("starting MarkSentinel API server",
		logging.String("version", version),
		logging.Int("port", cfg.Server.Port))

	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatal("database connection failed", logging.Err(err))
	}
	defer conn.Close()

	if cfg.Database.MigrationPath != "" {
		if err := postgres.RunMigrations(postgres.BuildDSN(cfg.Database), cfg.Database.MigrationPath); err != nil {
			logger.Fatal("migrations failed", logging.Err(err))
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	itemRepo := repositories.NewPostgresItemRepo(conn, logger)
	alertRepo := repositories.NewPostgresAlertRepo(conn, logger)

	pingers := map[string]handlers.Pinger{"postgres": conn}

	// Redis is optional: without it registry lookups just skip the cache.
	var regOpts []registry.Option
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	redisClient, err := redisdb.NewClient(ctx, cfg.Redis, logger)
	cancel()
	if err != nil {
		logger.Warn("redis unavailable, registry cache disabled", logging.Err(err))
	} else {
		defer redisClient.Close()
		cache := redisdb.NewCache(redisClient, logger, redisdb.WithDefaultTTL(cfg.Registry.CacheTTL))
		regOpts = append(regOpts, registry.WithCache(cache, cfg.Registry.CacheTTL))
		pingers["redis"] = redisClient
	}

	registryClient := registry.NewClient(cfg.Registry, logger, regOpts...)
	detectors := buildDetectors(cfg, registryClient, logger)

	publisher := buildPublisher(cfg.Kafka, logger)
	defer publisher.Close()

	scheduler := scheduling.NewScheduler(itemRepo, alertRepo, detectors, logger,
		scheduling.WithPublisher(publisher),
		scheduling.WithMetrics(m),
		scheduling.WithCheckTimeout(cfg.Scheduler.CheckTimeout),
		scheduling.WithBatchSize(cfg.Scheduler.BatchSize))

	itemService := items.NewService(itemRepo, logger)

	router := httpserver.NewRouter(cfg.Server, httpserver.RouterDeps{
		Items:   handlers.NewItemHandler(itemService, scheduler, logger),
		Alerts:  handlers.NewAlertHandler(alertRepo, logger),
		Health:  handlers.NewHealthHandler(version, pingers),
		Metrics: m,
		Logger:  logger,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	// Log level and registry request spacing follow the config file without
	// a restart.
	if _, statErr := os.Stat(*configPath); statErr == nil {
		config.Watch(*configPath, func(updated *config.Config) {
			if ls, ok := logger.(logging.LevelSetter); ok {
				ls.SetLevel(updated.Log.Level)
			}
			if rc, ok := registryClient.(interface{ SetRateInterval(time.Duration) }); ok {
				rc.SetRateInterval(updated.Registry.RequestInterval)
			}
			logger.Info("configuration reloaded",
				logging.String("log_level", updated.Log.Level),
				logging.Duration("registry_interval", updated.Registry.RequestInterval))
		})
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("http server failed", logging.Err(err))
		}
	}()
	go observeItemCounts(itemRepo, m, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown failed", logging.Err(err))
	}
	logger.Info("server stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// buildDetectors wires one detector per monitoring surface.  Scan sources are
// synthetic when no upstream URLs are configured.
func buildDetectors(cfg *config.Config, registryClient registry.Client, logger logging.Logger) *detection.Registry {
	timeout := cfg.Sources.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	domainSource := scansource.NewSyntheticSource("domain")
	marketplaceSource := scansource.NewSyntheticSource("marketplace")
	socialSource := scansource.NewSyntheticSource("social")
	if !cfg.Sources.Synthetic {
		if cfg.Sources.DomainAPIURL != "" {
			domainSource = scansource.NewDomainSource(cfg.Sources.DomainAPIURL, timeout, logger)
		}
		if cfg.Sources.MarketplaceAPIURL != "" {
			marketplaceSource = scansource.NewMarketplaceSource(cfg.Sources.MarketplaceAPIURL, timeout, logger)
		}
		if cfg.Sources.SocialAPIURL != "" {
			socialSource = scansource.NewSocialSource(cfg.Sources.SocialAPIURL, timeout, logger)
		}
	}

	return detection.NewRegistry(
		detection.NewTrademarkDetector(registryClient, logger),
		detection.NewDomainDetector(domainSource, cfg.Sources.DomainZones, logger),
		detection.NewMarketplaceDetector(marketplaceSource, cfg.Sources.MarketplacePlatforms, logger),
		detection.NewSocialDetector(socialSource, cfg.Sources.SocialPlatforms, logger),
	)
}

func buildPublisher(cfg config.KafkaConfig, logger logging.Logger) kafka.Publisher {
	if len(cfg.Brokers) == 0 {
		logger.Info("kafka brokers not configured, events disabled")
		return kafka.NewNopPublisher()
	}
	return kafka.NewProducer(cfg, logger)
}

// observeItemCounts refreshes the items-by-status gauge on a fixed cadence.
func observeItemCounts(repo monitoring.ItemRepository, m *metrics.Metrics, logger logging.Logger) {
	statuses := []monitoring.ItemStatus{
		monitoring.StatusActive, monitoring.StatusChecking, monitoring.StatusError,
	}
	for {
		for _, status := range statuses {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_, total, err := repo.List(ctx, monitoring.WithStatus(status), monitoring.WithPage(1, 0))
			cancel()
			if err != nil {
				logger.Debug("item count refresh failed", logging.Err(err))
				continue
			}
			m.ItemsByStatus.WithLabelValues(status.String()).Set(float64(total))
		}
		time.Sleep(time.Minute)
	}
}
