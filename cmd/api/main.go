// @title                       Tasktrack API
// @version                     1.0
// @description                 Users, roles and tasks behind bearer-token authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tasktrack/tasktrack-api/internal/api"
	"github.com/tasktrack/tasktrack-api/internal/api/handler"
	"github.com/tasktrack/tasktrack-api/internal/core/security"
	"github.com/tasktrack/tasktrack-api/internal/core/service"
	"github.com/tasktrack/tasktrack-api/internal/infrastructure/db/mongo"
	"github.com/tasktrack/tasktrack-api/internal/infrastructure/db/redis"
	"github.com/tasktrack/tasktrack-api/internal/infrastructure/queue"
	"github.com/tasktrack/tasktrack-api/internal/infrastructure/storage"
	"github.com/tasktrack/tasktrack-api/internal/pkg/config"
	"github.com/tasktrack/tasktrack-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "tasktrack-api",
	})
	if cfg.InsecureSecret() {
		log.Warn().Msg("JWT_SECRET not set, using the insecure development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	userRepo := mongo.NewUserRepository(db)
	taskRepo := mongo.NewTaskRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	if err := taskRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create task indexes")
	}

	files, err := storage.NewLocalFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	// --- Background cleanup ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	cleanup := queue.NewDispatcher(cfg.Cleanup.Workers, files, log)
	cleanup.Start(workerCtx)

	// --- Core ---
	hasher := security.NewPasswordHasher(cfg.Auth.BcryptCost, cfg.Auth.HashConcurrency)
	issuer := security.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	verifier := security.NewTokenVerifier(cfg.Auth.JWTSecret)
	throttle := redis.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockout)

	e := api.NewRouter(api.Dependencies{
		Log:      log,
		Verifier: verifier,
		Auth:     service.NewAuthService(userRepo, hasher, issuer, throttle, log),
		Users:    service.NewUserService(userRepo, hasher, files, cleanup, log),
		Tasks:    service.NewTaskService(taskRepo, userRepo, files, cleanup, log),
		Health: map[string]handler.Pinger{
			"mongodb": handler.PingerFunc(func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }),
			"redis":   handler.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
		UploadDir:  files.Root(),
		TrustProxy: cfg.TrustProxy,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// No request can enqueue anymore; let the workers drain.
	stopWorkers()
	cleanup.Wait()

	log.Info().Msg("server stopped")
}
