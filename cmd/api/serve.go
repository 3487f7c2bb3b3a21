package main

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
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/openhealthcare/openehr-api/internal/config"
	promHandler "github.com/openhealthcare/openehr-api/internal/handler/prometheus"
	"github.com/openhealthcare/openehr-api/internal/middleware"
	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
	"github.com/openhealthcare/openehr-api/internal/repository/memory"
	"github.com/openhealthcare/openehr-api/internal/repository/postgres"
	"github.com/openhealthcare/openehr-api/internal/router"
	"github.com/openhealthcare/openehr-api/internal/service"
	"github.com/openhealthcare/openehr-api/pkg/auth"
	"github.com/openhealthcare/openehr-api/pkg/messaging/redis"
	"github.com/openhealthcare/openehr-api/pkg/metrics"
	"github.com/openhealthcare/openehr-api/pkg/validator"
	"github.com/openhealthcare/openehr-api/pkg/worker"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the records API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			withWorker, _ := cmd.Flags().GetBool("with-worker")
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cfg, withWorker)
		},
	}
	cmd.Flags().Bool("with-worker", false, "Also publish outbox events from this process")
	return cmd
}

// openStore returns the configured store and a close function.
func openStore(cfg *config.Config) (*repository.Store, func(), error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("Using in-memory storage; records are lost on exit")
		return memory.NewStore(), func() {}, nil
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewStore(db), func() { _ = db.Close() }, nil
}

func serve(cfg *config.Config, withWorker bool) error {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("openehr", reg)

	services := service.NewServices(
		store,
		validator.New(model.IsValidChoice),
		cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval),
		m,
	)

	var authMiddleware *middleware.AuthMiddleware
	if cfg.Auth.JWTSecret != "" {
		authMiddleware = middleware.NewAuthMiddleware(auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer))
	} else {
		log.Warn().Msg("auth.jwt_secret is not set; write routes are unauthenticated")
	}

	gin.SetMode(gin.ReleaseMode)
	r := router.NewRouter(services, store.Pinger, promHandler.New(reg, m), authMiddleware, router.RouterConfig{
		Timeout:          cfg.Server.Timeout,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		CORSConfig:       middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins...),
	})
	r.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if withWorker {
		if err := startWorker(ctx, cfg, store, m); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("storage", cfg.Storage.Driver).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}

// startWorker runs the outbox processor and cleanup in this process,
// which is the only way to publish events from the memory store.
func startWorker(ctx context.Context, cfg *config.Config, store *repository.Store, m *metrics.Metrics) error {
	broker, err := redis.NewRedisBroker(ctx, cfg.ToBrokerConfig(), log.Logger, m)
	if err != nil {
		return fmt.Errorf("failed to create Redis broker: %w", err)
	}

	processor, err := worker.NewOutboxProcessor(store.Outbox, broker, cfg.ToWorkerConfig(), log.Logger, m)
	if err != nil {
		_ = broker.Close()
		return err
	}
	cleanup := worker.NewOutboxCleanupWorker(store.Outbox, cfg.Outbox.RetainFor, time.Hour, log.Logger, m)

	go processor.Start(ctx)
	go cleanup.Start(ctx)
	go func() {
		<-ctx.Done()
		_ = broker.Close()
	}()
	return nil
}
