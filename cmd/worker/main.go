package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/openhealthcare/openehr-api/internal/config"
	"github.com/openhealthcare/openehr-api/internal/repository/postgres"
	"github.com/openhealthcare/openehr-api/pkg/logger"
	"github.com/openhealthcare/openehr-api/pkg/messaging/redis"
	"github.com/openhealthcare/openehr-api/pkg/metrics"
	"github.com/openhealthcare/openehr-api/pkg/worker"
)

func newHealthServer(addr string, reg *prometheus.Registry, ready func(context.Context) error) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	if cfg.Storage.Driver != "postgres" {
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("The outbox worker needs the postgres storage driver")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("openehr_worker", reg)

	broker, err := redis.NewRedisBroker(ctx, cfg.ToBrokerConfig(), log.Logger, m)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis broker")
	}
	defer broker.Close()

	store := postgres.NewStore(db)

	processor, err := worker.NewOutboxProcessor(store.Outbox, broker, cfg.ToWorkerConfig(), log.Logger, m)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create outbox processor")
	}
	cleanup := worker.NewOutboxCleanupWorker(store.Outbox, cfg.Outbox.RetainFor, time.Hour, log.Logger, m)

	health := newHealthServer(cfg.Outbox.HealthCheckAddr, reg, func(ctx context.Context) error {
		if err := store.Pinger.Ping(ctx); err != nil {
			return err
		}
		return broker.Ping(ctx)
	})
	go func() {
		if err := health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Health check server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		cleanup.Start(ctx)
	}()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := health.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Health check server shutdown failed")
	}
}
