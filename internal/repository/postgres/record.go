package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

// recordRepository stores one record kind in its own table plus one join
// table per relation.
type recordRepository[T model.Record] struct {
	BaseRepository
	kind  model.Kind
	table table
}

func newRecordRepository[T model.Record](base BaseRepository, kind model.Kind) *recordRepository[T] {
	return &recordRepository[T]{
		BaseRepository: base,
		kind:           kind,
		table:          tableFor(kind),
	}
}

// NewRecordRepository builds the repository for any record kind.
func NewRecordRepository[T model.Record](base BaseRepository) repository.RecordRepository[T] {
	var zero T
	return newRecordRepository[T](base, zero.Kind())
}

func (r *recordRepository[T]) newRecord() T {
	return model.New(r.kind).(T)
}

func (r *recordRepository[T]) Create(ctx context.Context, rec T) error {
	b := rec.GetBase()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, r.table.insertQuery(), rec); err != nil {
			return mapError(err, "create", r.kind)
		}
		if err := replaceLinks(ctx, tx, rec, false); err != nil {
			return err
		}
		return r.insertEvent(ctx, tx, model.RecordEvent{
			Kind:     r.kind,
			Action:   model.ActionCreate,
			RecordID: b.ID,
			Record:   rec,
		})
	})
}

func (r *recordRepository[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	return r.get(ctx, r.db, id)
}

func (r *recordRepository[T]) get(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (T, error) {
	rec := r.newRecord()
	err := sqlx.GetContext(ctx, q, rec, r.table.selectQuery()+" WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, apperrors.NewNotFound(string(r.kind), err)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to get %s: %w", r.kind, err)
	}

	if err := loadLinks(ctx, q, r.kind, []T{rec}); err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

func (r *recordRepository[T]) Update(ctx context.Context, rec T) error {
	b := rec.GetBase()
	b.UpdatedAt = now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := tx.BindNamed(r.table.updateQuery(), rec)
		if err != nil {
			return fmt.Errorf("failed to bind %s update: %w", r.kind, err)
		}
		err = tx.QueryRowxContext(ctx, query, args...).Scan(&b.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewNotFound(string(r.kind), err)
		}
		if err != nil {
			return mapError(err, "update", r.kind)
		}
		b.CreatedAt = b.CreatedAt.UTC()

		if err := replaceLinks(ctx, tx, rec, true); err != nil {
			return err
		}
		return r.insertEvent(ctx, tx, model.RecordEvent{
			Kind:     r.kind,
			Action:   model.ActionUpdate,
			RecordID: b.ID,
			Record:   rec,
		})
	})
}

func (r *recordRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return r.delete(ctx, tx, id)
	})
}

// delete removes the row; join rows go with it through ON DELETE CASCADE.
func (r *recordRepository[T]) delete(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	result, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.table.name), id)
	if err != nil {
		return mapError(err, "delete", r.kind)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.kind, err)
	}
	if rows == 0 {
		return apperrors.NewNotFound(string(r.kind), nil)
	}
	return r.insertEvent(ctx, tx, model.RecordEvent{
		Kind:     r.kind,
		Action:   model.ActionDelete,
		RecordID: id,
	})
}

func (r *recordRepository[T]) List(ctx context.Context, page model.Pagination) ([]T, error) {
	page = page.Normalize()
	query := r.table.selectQuery() + " ORDER BY created_at, id LIMIT $1 OFFSET $2"

	recs := []T{}
	if err := r.db.SelectContext(ctx, &recs, query, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.kind, err)
	}
	if err := loadLinks(ctx, r.db, r.kind, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *recordRepository[T]) relation(name string) (model.Relation, error) {
	rel, ok := model.FindRelation(r.kind, name)
	if !ok {
		return model.Relation{}, apperrors.NewBadRequest(fmt.Sprintf("%s has no relation %q", r.kind, name), nil)
	}
	return rel, nil
}

func (r *recordRepository[T]) exists(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	var found bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", r.table.name)
	if err := tx.GetContext(ctx, &found, query, id); err != nil {
		return fmt.Errorf("failed to look up %s: %w", r.kind, err)
	}
	if !found {
		return apperrors.NewNotFound(string(r.kind), nil)
	}
	return nil
}

// Link associates targetID with the record. Linking an existing pair is a
// no-op and emits no event.
func (r *recordRepository[T]) Link(ctx context.Context, id uuid.UUID, relation string, targetID uuid.UUID) error {
	rel, err := r.relation(relation)
	if err != nil {
		return err
	}
	jt := joinTableFor(r.kind, rel)

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := r.exists(ctx, tx, id); err != nil {
			return err
		}

		if jt.symmetric {
			var reverse bool
			if err := tx.GetContext(ctx, &reverse, jt.existsQuery(), targetID, id); err != nil {
				return fmt.Errorf("failed to check %s: %w", rel.Name, err)
			}
			if reverse {
				return nil
			}
		}

		result, err := tx.ExecContext(ctx, jt.insertQuery(), id, targetID)
		if err != nil {
			return mapLinkError(err, r.kind, rel)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return nil
		}
		return r.insertEvent(ctx, tx, model.RecordEvent{
			Kind:     r.kind,
			Action:   model.ActionLink,
			RecordID: id,
			Relation: rel.Name,
			TargetID: &targetID,
		})
	})
}

// Unlink removes the association. A missing association is NotFound.
func (r *recordRepository[T]) Unlink(ctx context.Context, id uuid.UUID, relation string, targetID uuid.UUID) error {
	rel, err := r.relation(relation)
	if err != nil {
		return err
	}
	jt := joinTableFor(r.kind, rel)

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, jt.deleteQuery(), id, targetID)
		if err != nil {
			return fmt.Errorf("failed to unlink %s: %w", rel.Name, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to unlink %s: %w", rel.Name, err)
		}
		if rows == 0 {
			return apperrors.NewNotFound(rel.Name+" link", nil)
		}
		return r.insertEvent(ctx, tx, model.RecordEvent{
			Kind:     r.kind,
			Action:   model.ActionUnlink,
			RecordID: id,
			Relation: rel.Name,
			TargetID: &targetID,
		})
	})
}
