// Background worker for MarkSentinel: runs due monitoring checks on a cron
// cadence and serves health and metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/turtacn/MarkSentinel/internal/application/detection"
	"github.com/turtacn/MarkSentinel/internal/application/scheduling"
	"github.com/turtacn/MarkSentinel/internal/config"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/database/postgres/repositories"
	redisdb "github.com/turtacn/MarkSentinel/internal/infrastructure/database/redis"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/registry"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/scansource"
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
	logger.Info("starting MarkSentinel worker",
		logging.String("version", version),
		logging.String("tick", cfg.Scheduler.TickSpec),
		logging.Int("concurrency", cfg.Worker.Concurrency))

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
	}

	registryClient := registry.NewClient(cfg.Registry, logger, regOpts...)
	detectors := buildDetectors(cfg, registryClient, logger)

	publisher := buildPublisher(cfg.Kafka, logger)
	defer publisher.Close()

	sched := scheduling.NewScheduler(itemRepo, alertRepo, detectors, logger,
		scheduling.WithPublisher(publisher),
		scheduling.WithMetrics(m),
		scheduling.WithCheckTimeout(cfg.Scheduler.CheckTimeout),
		scheduling.WithBatchSize(cfg.Scheduler.BatchSize),
		scheduling.WithConcurrency(cfg.Worker.Concurrency))

	runCtx, stopRuns := context.WithCancel(context.Background())
	defer stopRuns()

	c := cron.New()
	if _, err := c.AddFunc(cfg.Scheduler.TickSpec, func() {
		attempted, err := sched.RunDue(runCtx)
		if err != nil {
			logger.Error("due pass aborted",
				logging.Int("attempted", attempted),
				logging.Err(err))
		}
	}); err != nil {
		logger.Fatal("invalid scheduler tick spec",
			logging.String("tick", cfg.Scheduler.TickSpec),
			logging.Err(err))
	}
	c.Start()

	sidecar := newSidecarServer(cfg, conn, logger)
	go func() {
		if err := sidecar.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server failed", logging.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down worker")
	stopRuns()
	cronCtx := c.Stop()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	select {
	case <-cronCtx.Done():
	case <-shutdownCtx.Done():
		logger.Warn("timed out waiting for in-flight checks")
	}
	if err := sidecar.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", logging.Err(err))
	}
	logger.Info("worker stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// newSidecarServer exposes liveness, readiness, Prometheus metrics and the
// optional profiler on the worker port.
func newSidecarServer(cfg *config.Config, conn *postgres.Connection, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := conn.Ping(ctx); err != nil {
			logger.Warn("readiness probe failed", logging.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, "database unreachable")
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	if cfg.Worker.EnableProfiler {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

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
