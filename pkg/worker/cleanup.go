package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/openhealthcare/openehr-api/internal/repository"
	"github.com/openhealthcare/openehr-api/pkg/metrics"
)

// OutboxCleanupWorker purges processed events older than the retention
// window.
type OutboxCleanupWorker struct {
	repo     repository.OutboxRepository
	retain   time.Duration
	interval time.Duration
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retain, interval time.Duration, logger zerolog.Logger, m *metrics.Metrics) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:     repo,
		retain:   retain,
		interval: interval,
		logger:   logger.With().Str("component", "outbox-cleanup").Logger(),
		metrics:  m,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Purge(ctx, time.Now())
		}
	}
}

// Purge deletes events processed before now minus the retention window.
func (w *OutboxCleanupWorker) Purge(ctx context.Context, now time.Time) int64 {
	deleted, err := w.repo.DeleteProcessedBefore(ctx, now.Add(-w.retain))
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to purge processed events")
		return 0
	}
	if deleted > 0 {
		w.metrics.OutboxEventsPurged.Add(float64(deleted))
		w.logger.Info().Int64("deleted", deleted).Msg("Purged processed events")
	}
	return deleted
}
