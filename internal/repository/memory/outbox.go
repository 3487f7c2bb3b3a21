package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openhealthcare/openehr-api/internal/model"
)

type outboxRepository struct {
	store *store
}

// GetPendingEventsWithLock returns due events without claiming them. The
// memory store lives inside one process with one processor reading it.
func (r *outboxRepository) GetPendingEventsWithLock(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	events := []*model.OutboxEvent{}
	for _, evt := range s.events {
		if len(events) >= limit {
			break
		}
		due := evt.Status == model.OutboxStatusPending ||
			(evt.Status == model.OutboxStatusFailed && evt.RetryAt != nil && !evt.RetryAt.After(now))
		if !due {
			continue
		}
		copied := *evt
		events = append(events, &copied)
	}
	return events, nil
}

func (r *outboxRepository) find(id uuid.UUID) *model.OutboxEvent {
	for _, evt := range r.store.events {
		if evt.ID == id {
			return evt
		}
	}
	return nil
}

func (r *outboxRepository) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if evt := r.find(id); evt != nil {
		now := r.store.now()
		evt.Status = model.OutboxStatusProcessed
		evt.ErrorMessage = nil
		evt.RetryAt = nil
		evt.ProcessedAt = &now
		evt.UpdatedAt = now
	}
	return nil
}

func (r *outboxRepository) MarkFailed(_ context.Context, id uuid.UUID, errorMessage string, retryAt *time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if evt := r.find(id); evt != nil {
		evt.Status = model.OutboxStatusFailed
		evt.ErrorMessage = &errorMessage
		evt.RetryCount++
		evt.RetryAt = retryAt
		evt.UpdatedAt = r.store.now()
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	kept := r.store.events[:0]
	var deleted int64
	for _, evt := range r.store.events {
		if evt.Status == model.OutboxStatusProcessed && evt.ProcessedAt != nil && evt.ProcessedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, evt)
	}
	r.store.events = kept
	return deleted, nil
}
