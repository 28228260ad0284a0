// @title                       BeneSafe Registry API
// @version                     1.0
// @description                 Roles, bouquets, profiles and entitlement checks for BeneSafe.
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

	_ "github.com/benesafe/registry/docs"
	"github.com/benesafe/registry/internal/api"
	"github.com/benesafe/registry/internal/core/service"
	mongodb "github.com/benesafe/registry/internal/infrastructure/db/mongo"
	redisdb "github.com/benesafe/registry/internal/infrastructure/db/redis"
	"github.com/benesafe/registry/internal/infrastructure/queue"
	"github.com/benesafe/registry/internal/infrastructure/telemetry"
	"github.com/benesafe/registry/internal/pkg/config"
	"github.com/benesafe/registry/pkg/logger"
)

const (
	serviceName     = "benesafe-registry"
	version         = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
		Version: version,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("application error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Otel.Enabled,
		Endpoint:    cfg.Otel.Endpoint,
		Insecure:    cfg.Otel.Insecure,
		SampleRate:  cfg.Otel.SampleRate,
		ServiceName: serviceName,
		Version:     version,
		Environment: cfg.Env,
	})
	if err != nil {
		log.Warn().Err(err).Msg("tracing disabled")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     serviceName,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	// --- Repositories ---
	users := mongodb.NewAuthRepository(db)
	roles := mongodb.NewRoleRepository(db)
	bouquets := mongodb.NewBouquetRepository(db)
	profiles := mongodb.NewProfileRepository(db)
	records := mongodb.NewRecordRepository(db)

	if err := mongodb.EnsureIndexes(ctx, users, roles, bouquets, profiles, records); err != nil {
		return err
	}

	// --- Mail ---
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, queue.NewLogMailer(logger.Component("mailer")), logger.Component("dispatcher"))
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher.Start(workerCtx)

	// --- Services ---
	entitlements := service.NewEntitlementService(profiles, roles, bouquets, records, logger.Component("entitlements"))
	registry := service.NewRegistryService(roles, bouquets, profiles, logger.Component("registry"))
	profileSvc := service.NewProfileService(profiles, roles, registry, users, logger.Component("profiles"))
	recordSvc := service.NewRecordService(records, entitlements, logger.Component("records"))
	authSvc := service.NewAuthService(
		users,
		profileSvc,
		bouquets,
		entitlements,
		redisdb.NewTokenStore(rdb, cfg.Auth.VerifyTokenTTL),
		dispatcher,
		service.AuthOptions{
			JWTSecret:     cfg.Auth.JWTSecret,
			TokenTTL:      cfg.Auth.TokenTTL,
			PublicBaseURL: cfg.PublicBaseURL,
		},
		logger.Component("auth"),
	)

	e := api.NewRouter(api.Services{
		Auth:         authSvc,
		Registry:     registry,
		Profiles:     profileSvc,
		Records:      recordSvc,
		Entitlements: entitlements,
	}, db, rdb, api.RouterConfig{
		JWTSecret:          cfg.Auth.JWTSecret,
		RateLimitPerMinute: cfg.Auth.RateLimitPerMinute,
	}, log)

	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		stop()
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}

	// handlers are done, so no further mail can be enqueued
	dispatcher.Close()
	stopWorkers()

	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("telemetry shutdown error")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close error")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect error")
	}

	log.Info().Msg("application stopped")
	return nil
}
