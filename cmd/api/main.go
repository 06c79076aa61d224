// Package main is the entry point for the social-search-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"social-search-service/internal/app/service"
	"social-search-service/internal/config"
	"social-search-service/internal/domain"
	"social-search-service/internal/infra/elastic"
	"social-search-service/internal/infra/postgres"
	"social-search-service/internal/infra/postgres/migrations"
	rediscache "social-search-service/internal/infra/redis"
	"social-search-service/internal/infra/socialgraph"
	"social-search-service/internal/job"
	"social-search-service/internal/logger"
	"social-search-service/internal/transport/httpserver"
	"social-search-service/internal/validator"
	"social-search-service/pkg/locker"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting social-search-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// Connect to database
	db, err := postgres.NewConnection(
		postgres.Config{
			Host:         cfg.Database.Host,
			Port:         cfg.Database.Port,
			Name:         cfg.Database.Name,
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			SSLMode:      cfg.Database.SSLMode,
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			MaxLifetime:  cfg.Database.MaxLifetime,
		},
		log.Logger,
	)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	// Run migrations
	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	ctx := context.Background()

	// Relational backend and search-log store share the connection
	relational := postgres.NewRepository(db)
	logStore := postgres.NewLogStore(db)

	backends := []domain.SearchBackend{relational}

	// Index backend is optional: no configured addresses means filters
	// routed to it get a backend-unavailable error
	esCfg := elastic.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
		Index:     cfg.Elastic.Index,
	}
	if esCfg.Enabled() {
		esClient, err := elastic.NewClient(esCfg, nil, log.Logger)
		if err != nil {
			log.Fatal("failed to connect to Elasticsearch", zap.Error(err))
		}
		if err := elastic.EnsureIndex(ctx, esClient, esCfg.Index); err != nil {
			log.Fatal("failed to ensure search index", zap.Error(err))
		}
		backends = append(backends, elastic.NewBackend(esClient, esCfg.Index, log.Logger))
		log.Info("index backend enabled", zap.String("index", esCfg.Index))
	} else {
		log.Info("index backend disabled")
	}

	// Social graph collaborator
	graph := socialgraph.New(
		socialgraph.ClientConfig{
			BaseURL: cfg.SocialGraph.BaseURL,
			Timeout: cfg.SocialGraph.Timeout,
			Retry: socialgraph.RetryConfig{
				MaxAttempts: cfg.SocialGraph.Retry.MaxAttempts,
				WaitTime:    cfg.SocialGraph.Retry.WaitTime,
				MaxWaitTime: cfg.SocialGraph.Retry.MaxWaitTime,
			},
			CB: socialgraph.CBConfig{
				MaxRequests:  cfg.SocialGraph.CB.MaxRequests,
				Interval:     cfg.SocialGraph.CB.Interval,
				Timeout:      cfg.SocialGraph.CB.Timeout,
				FailureRatio: cfg.SocialGraph.CB.FailureRatio,
			},
		},
		log.Logger,
	)

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr()))

	// Create cache implementation (optional, based on config)
	var cache domain.ResultCache
	if cfg.Cache.Enabled {
		cache = rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix, cfg.Cache.SearchTTL)
		log.Info("result cache enabled",
			zap.Duration("search_ttl", cfg.Cache.SearchTTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("result cache disabled")
	}

	// Fire-and-forget analytics sink
	sink := service.NewAnalyticsSink(logStore, log.Logger, cfg.Analytics.BufferSize)

	// Create search service
	searchSvc := service.NewSearchService(
		backends,
		graph,
		cache,
		logStore,
		sink,
		service.Config{
			DefaultBackend:  domain.Backend(cfg.Search.DefaultBackend),
			FallbackEnabled: cfg.Search.FallbackEnabled,
			TrendingWindow:  cfg.Analytics.TrendingWindow,
		},
		log.Logger,
	)

	// Create validator
	v := validator.New()

	// Create HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:      cfg.App.Port,
			BodyLimit: 1024 * 1024, // 1MB
			Debug:     cfg.App.Debug,
		},
		searchSvc,
		db,
		v,
		log.Logger,
	)

	// Start retention scheduler with distributed locking
	distLocker := locker.NewRedisLocker(redisClient, log.Logger)
	scheduler := job.NewRetentionScheduler(
		logStore,
		job.RetentionConfig{
			Interval:  cfg.Analytics.PruneInterval,
			Retention: cfg.Analytics.Retention,
		},
		log.Logger,
		distLocker,
	)
	scheduler.Start()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		// Stop background work, then flush queued analytics
		scheduler.Stop()
		sink.Close()

		// Shutdown server with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	// Start server
	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
