// Package main is the entry point of the gameboard worker.
//
// The worker owns the two periodic jobs of the popularity pipeline:
//   - cache_popularity_factors: once a day, snapshots yesterday's per-game
//     factors and the board-wide maxima into Redis
//   - refresh_popularity: every few minutes, recomputes the popularity score
//     of every active game and upserts the daily record
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gameboard-hub/gameboard-core/config"
	"github.com/gameboard-hub/gameboard-core/internal/domain/popularity"
	"github.com/gameboard-hub/gameboard-core/internal/infrastructure/persistence/postgres"
	"github.com/gameboard-hub/gameboard-core/internal/infrastructure/persistence/redis"
	"github.com/gameboard-hub/gameboard-core/internal/infrastructure/scheduler"
	"github.com/gameboard-hub/gameboard-core/internal/infrastructure/scheduler/jobs"
	"github.com/gameboard-hub/gameboard-core/pkg/logger"
	"github.com/gameboard-hub/gameboard-core/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting gameboard worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	appLog := logger.New(logger.Options{
		Level: logger.ParseLevel(cfg.Observability.LogLevel),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. POSTGRES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Name,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	}

	var dbConn *postgres.Connection
	err = retry.StartupRetrier().Do(ctx, func(ctx context.Context) error {
		var connErr error
		dbConn, connErr = postgres.NewConnection(ctx, dbCfg)
		return connErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis...")
	redisCfg := redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}

	var redisCache *redis.Cache
	err = retry.StartupRetrier().Do(ctx, func(ctx context.Context) error {
		var cacheErr error
		redisCache, cacheErr = redis.NewCache(redisCfg)
		return cacheErr
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		log.Info("closing Redis connection...")
		_ = redisCache.Close()
	}()
	log.Info("Redis connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES AND DOMAIN SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	gameRepo := postgres.NewGameRepository(dbConn)
	sessionRepo := postgres.NewSessionRepository(dbConn)
	popularityRepo := postgres.NewPopularityRepository(dbConn)

	popularityCache := redis.NewPopularityCache(redisCache)
	calculator := popularity.NewCalculator(sessionRepo, appLog)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. SCHEDULER AND JOBS
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler is disabled, worker will idle")
		return waitForShutdown(ctx, log)
	}

	sched := scheduler.New(scheduler.Config{
		Logger:     log,
		Timezone:   cfg.App.Location,
		JobTimeout: cfg.Scheduler.JobTimeout,
	})

	cacheJob := jobs.NewCacheFactorsJob(
		gameRepo,
		calculator,
		popularityCache,
		log,
		jobs.CacheFactorsConfig{
			Timezone: cfg.App.Location,
			Timeout:  cfg.Scheduler.CacheTimeout,
		},
	)
	var cacheSchedule scheduler.Schedule
	if expr := cfg.Scheduler.DailyCacheCron; expr != "" {
		cacheSchedule, err = scheduler.ParseCronExpression(expr)
		if err != nil {
			return fmt.Errorf("invalid SCHEDULER_DAILY_CACHE_CRON: %w", err)
		}
	} else {
		cacheSchedule = scheduler.NewDailySchedule(
			cfg.Scheduler.DailyCacheHour,
			cfg.Scheduler.DailyCacheMinute,
			cfg.App.Location,
		)
	}
	if err := sched.Register(cacheJob, cacheSchedule); err != nil {
		return fmt.Errorf("failed to register %s: %w", cacheJob.Name(), err)
	}

	refreshJob := jobs.NewRefreshPopularityJob(
		gameRepo,
		popularityRepo,
		calculator,
		popularityCache,
		log,
		jobs.RefreshPopularityConfig{
			Timezone:    cfg.App.Location,
			Weights:     popularity.DefaultWeights(),
			Concurrency: cfg.Scheduler.RefreshConcurrency,
			Timeout:     cfg.Scheduler.RefreshTimeout,
		},
	)
	refreshSchedule := scheduler.NewIntervalSchedule(cfg.Scheduler.RefreshInterval)
	if err := sched.Register(refreshJob, refreshSchedule); err != nil {
		return fmt.Errorf("failed to register %s: %w", refreshJob.Name(), err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	log.Info("scheduler started",
		"refresh_interval", cfg.Scheduler.RefreshInterval.String(),
		"daily_cache_schedule", cacheSchedule.String(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	if err := waitForShutdown(ctx, log); err != nil {
		return err
	}

	log.Info("stopping scheduler...", "timeout", cfg.App.ShutdownTimeout.String())
	if err := sched.Stop(); err != nil {
		log.Error("scheduler stop failed", "error", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// waitForShutdown blocks until a termination signal arrives or the root
// context is cancelled.
func waitForShutdown(ctx context.Context, log *slog.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// setupLogger configures structured logging for the worker.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
