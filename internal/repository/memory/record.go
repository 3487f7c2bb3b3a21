package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
)

type recordRepository[T model.Record] struct {
	store *store
	kind  model.Kind
}

func newRecordRepository[T model.Record](s *store) *recordRepository[T] {
	var zero T
	return &recordRepository[T]{store: s, kind: zero.Kind()}
}

func (r *recordRepository[T]) Create(_ context.Context, rec T) error {
	return r.store.create(rec)
}

func (r *recordRepository[T]) Get(_ context.Context, id uuid.UUID) (T, error) {
	rec, err := r.store.get(r.kind, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return rec.(T), nil
}

func (r *recordRepository[T]) Update(_ context.Context, rec T) error {
	return r.store.update(rec)
}

func (r *recordRepository[T]) Delete(_ context.Context, id uuid.UUID) error {
	return r.store.delete(r.kind, id)
}

func (r *recordRepository[T]) List(_ context.Context, page model.Pagination) ([]T, error) {
	recs, err := r.store.list(r.kind, page)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(recs))
	for i, rec := range recs {
		out[i] = rec.(T)
	}
	return out, nil
}

func (r *recordRepository[T]) Link(_ context.Context, id uuid.UUID, relation string, targetID uuid.UUID) error {
	return r.store.link(r.kind, id, relation, targetID)
}

func (r *recordRepository[T]) Unlink(_ context.Context, id uuid.UUID, relation string, targetID uuid.UUID) error {
	return r.store.unlink(r.kind, id, relation, targetID)
}

type therapeuticDirectionRepository struct {
	*recordRepository[*model.TherapeuticDirection]
}

var _ repository.TherapeuticDirectionRepository = (*therapeuticDirectionRepository)(nil)

// ListDosages orders by dosage_sequence with unsequenced dosages last.
func (r *therapeuticDirectionRepository) ListDosages(_ context.Context, directionID uuid.UUID) ([]*model.TherapeuticDirectionDosage, error) {
	s := r.store
	if _, err := s.get(model.KindTherapeuticDirection, directionID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dosages := []*model.TherapeuticDirectionDosage{}
	for _, rec := range s.records[model.KindTherapeuticDirectionDosage] {
		dosage := rec.(*model.TherapeuticDirectionDosage)
		if dosage.TherapeuticDirectionID != directionID {
			continue
		}
		copied, err := clone(dosage)
		if err != nil {
			return nil, err
		}
		dosages = append(dosages, copied.(*model.TherapeuticDirectionDosage))
	}

	sort.Slice(dosages, func(i, j int) bool {
		a, b := dosages[i], dosages[j]
		switch {
		case a.DosageSequence != nil && b.DosageSequence == nil:
			return true
		case a.DosageSequence == nil && b.DosageSequence != nil:
			return false
		case a.DosageSequence != nil && *a.DosageSequence != *b.DosageSequence:
			return *a.DosageSequence < *b.DosageSequence
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return dosages, nil
}
