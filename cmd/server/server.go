package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/axellelanca/linkshelf/cmd"
	"github.com/axellelanca/linkshelf/internal/api"
	"github.com/axellelanca/linkshelf/internal/config"
	"github.com/axellelanca/linkshelf/internal/identity"
	"github.com/axellelanca/linkshelf/internal/logging"
	"github.com/axellelanca/linkshelf/internal/monitor"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/services"
	"github.com/axellelanca/linkshelf/internal/session"
	"github.com/axellelanca/linkshelf/internal/storage"
	"github.com/axellelanca/linkshelf/internal/workers"
)

// RunServerCmd starts the HTTP API and its background processes.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Starts the link collection API and background workers.",
	Long: `This command initializes the database, connects to the session cache
and object storage, starts the deferred task workers and the link monitor,
then serves the HTTP API until SIGINT or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(); err != nil {
			logging.Fatal().Err(err).Msg("Server stopped with an error")
		}
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}

func run() error {
	cfg := cmd.Cfg
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.OpenDatabase(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repository.AutoMigrate(db); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	tx := repository.NewTxManager(db)
	logging.Info().Str("driver", cfg.Database.Driver).Msg("Repositories initialized")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Requests with a token answer 503 until the cache comes back.
		logging.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Session cache unreachable")
	}

	// Interfaces stay nil when storage is disabled, never a typed nil pointer.
	var (
		objects services.ObjectStorage
		remover workers.ObjectRemover
	)
	if cfg.Storage.AccessKey != "" {
		minioStorage, err := storage.NewMinioStorage(cfg.Storage)
		if err != nil {
			return err
		}
		objects, remover = minioStorage, minioStorage
		logging.Info().Str("endpoint", cfg.Storage.Endpoint).Str("bucket", cfg.Storage.Bucket).Msg("Object storage configured")
	} else {
		logging.Warn().Msg("Object storage disabled: storage.access_key is empty")
	}

	pool := workers.NewPool(cfg.Workers.BufferSize, collectionRepo, remover)
	pool.Start(cfg.Workers.WorkerCount)
	logging.Info().
		Int("buffer_size", cfg.Workers.BufferSize).
		Int("worker_count", cfg.Workers.WorkerCount).
		Msg("Task workers started")

	users := services.NewUserService(userRepo, tx, pool, objects)
	svc := api.Services{
		Auth: services.NewAuthService(
			identity.NewKakaoProvider(cfg.OAuth, nil),
			session.NewRedisStore(rdb),
			users,
			cfg.Redis.SessionTTL(),
		),
		Collections: services.NewCollectionService(collectionRepo, userRepo, tx, pool, objects, cfg.Feed.PageSize, cfg.Server.BaseURL),
		Links:       services.NewLinkService(linkRepo, collectionRepo, tx),
		Users:       users,
	}

	if cfg.Monitor.Enabled {
		interval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		go monitor.NewLinkMonitor(linkRepo, interval, nil).Start(ctx)
	}

	limiter := api.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.Burst)
	go sweepLimiter(ctx, limiter)

	gin.SetMode(ginMode(cfg))
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, svc, api.Options{
		RequestTimeout: cfg.Server.RequestTimeout(),
		LoginLimiter:   limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		pool.Close()
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logging.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	// Handlers are done; drain the tasks they queued.
	pool.Close()
	logging.Info().Msg("Server stopped")
	return nil
}

func sweepLimiter(ctx context.Context, limiter *api.RateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Cleanup(10 * time.Minute)
		}
	}
}

func ginMode(cfg *config.Config) string {
	if os.Getenv(gin.EnvGinMode) != "" {
		return os.Getenv(gin.EnvGinMode)
	}
	if cfg.Log.Level == "debug" {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}
