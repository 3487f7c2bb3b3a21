package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
	"github.com/openhealthcare/openehr-api/pkg/metrics"
	"github.com/openhealthcare/openehr-api/pkg/validator"
)

type RecordServicer[T model.Record] interface {
	Kind() model.Kind
	Create(ctx context.Context, rec T) error
	Get(ctx context.Context, id uuid.UUID) (T, error)
	Update(ctx context.Context, rec T) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page model.Pagination) ([]T, error)
	Link(ctx context.Context, id uuid.UUID, relation string, targetID uuid.UUID) error
	Unlink(ctx context.Context, id uuid.UUID, relation string, targetID uuid.UUID) error
}

// Service is the write path shared by every record kind. Records returned
// from Get may be served from a cache shared across kinds and must not be
// modified by callers.
type Service[T model.Record] struct {
	kind      model.Kind
	repo      repository.RecordRepository[T]
	validator validator.Validator
	cache     *cache.Cache
	metrics   *metrics.Metrics
	// symmetric kinds change their peers' link lists on write
	symmetric bool
}

func NewService[T model.Record](repo repository.RecordRepository[T], v validator.Validator, c *cache.Cache, m *metrics.Metrics) *Service[T] {
	var zero T
	kind := zero.Kind()

	symmetric := false
	for _, rel := range model.RelationsOf(kind) {
		if rel.Symmetric {
			symmetric = true
		}
	}

	return &Service[T]{
		kind:      kind,
		repo:      repo,
		validator: v,
		cache:     c,
		metrics:   m,
		symmetric: symmetric,
	}
}

func (s *Service[T]) Kind() model.Kind {
	return s.kind
}

func cacheKey(kind model.Kind, id uuid.UUID) string {
	return string(kind) + ":" + id.String()
}

// Validate runs field, choice and cross-field checks in that order.
func (s *Service[T]) Validate(rec T) error {
	if err := s.validator.Validate(rec); err != nil {
		s.metrics.ValidationRejections.WithLabelValues(string(s.kind), apperrors.CodeOf(err).String()).Inc()
		return err
	}
	return nil
}

func (s *Service[T]) observe(action string, err error) {
	status := "ok"
	if err != nil {
		status = apperrors.CodeOf(err).String()
	}
	s.metrics.RecordWrites.WithLabelValues(string(s.kind), action, status).Inc()
}

func (s *Service[T]) Create(ctx context.Context, rec T) error {
	if err := s.Validate(rec); err != nil {
		s.observe(model.ActionCreate, err)
		return fmt.Errorf("invalid %s: %w", s.kind, err)
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		s.observe(model.ActionCreate, err)
		return fmt.Errorf("failed to create %s: %w", s.kind, err)
	}
	s.observe(model.ActionCreate, nil)
	s.invalidate(rec.GetBase().ID)

	log.Debug().Str("kind", string(s.kind)).Str("id", rec.GetBase().ID.String()).Msg("Record created")
	return nil
}

func (s *Service[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	key := cacheKey(s.kind, id)
	if cached, found := s.cache.Get(key); found {
		if rec, ok := cached.(T); ok {
			s.metrics.CacheLookups.WithLabelValues(string(s.kind), "hit").Inc()
			return rec, nil
		}
	}
	s.metrics.CacheLookups.WithLabelValues(string(s.kind), "miss").Inc()

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to get %s: %w", s.kind, err)
	}
	s.cache.Set(key, rec, cache.DefaultExpiration)
	return rec, nil
}

// Update replaces the whole record, including its link lists.
func (s *Service[T]) Update(ctx context.Context, rec T) error {
	if err := s.Validate(rec); err != nil {
		s.observe(model.ActionUpdate, err)
		return fmt.Errorf("invalid %s: %w", s.kind, err)
	}

	err := s.repo.Update(ctx, rec)
	s.observe(model.ActionUpdate, err)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", s.kind, err)
	}
	s.invalidate(rec.GetBase().ID)
	return nil
}

func (s *Service[T]) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	s.observe(model.ActionDelete, err)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.kind, err)
	}

	// other records may have listed this one, so drop everything
	s.cache.Flush()

	log.Info().Str("kind", string(s.kind)).Str("id", id.String()).Msg("Record deleted")
	return nil
}

func (s *Service[T]) List(ctx context.Context, page model.Pagination) ([]T, error) {
	recs, err := s.repo.List(ctx, page.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.kind, err)
	}
	return recs, nil
}

func (s *Service[T]) Link(ctx context.Context, id uuid.UUID, relation string, targetID uuid.UUID) error {
	err := s.repo.Link(ctx, id, relation, targetID)
	s.observe(model.ActionLink, err)
	if err != nil {
		return fmt.Errorf("failed to link %s %s: %w", s.kind, relation, err)
	}
	s.invalidateLink(id, relation, targetID)
	return nil
}

func (s *Service[T]) Unlink(ctx context.Context, id uuid.UUID, relation string, targetID uuid.UUID) error {
	err := s.repo.Unlink(ctx, id, relation, targetID)
	s.observe(model.ActionUnlink, err)
	if err != nil {
		return fmt.Errorf("failed to unlink %s %s: %w", s.kind, relation, err)
	}
	s.invalidateLink(id, relation, targetID)
	return nil
}

func (s *Service[T]) invalidate(id uuid.UUID) {
	if s.symmetric {
		s.cache.Flush()
		return
	}
	s.cache.Delete(cacheKey(s.kind, id))
}

func (s *Service[T]) invalidateLink(id uuid.UUID, relation string, targetID uuid.UUID) {
	s.cache.Delete(cacheKey(s.kind, id))
	if rel, ok := model.FindRelation(s.kind, relation); ok && rel.Symmetric {
		s.cache.Delete(cacheKey(rel.Target, targetID))
	}
}
