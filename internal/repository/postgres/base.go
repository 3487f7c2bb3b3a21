package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/openhealthcare/openehr-api/internal/model"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// Ping reports whether the database is reachable.
func (r *BaseRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const insertEventQuery = `
	INSERT INTO outbox_events (
		id, event_type, payload, status, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6
	)`

// insertEvent enqueues a record change in the caller's transaction.
func (r *BaseRepository) insertEvent(ctx context.Context, tx *sqlx.Tx, evt model.RecordEvent) error {
	event, err := model.NewOutboxEvent(evt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, insertEventQuery,
		event.ID,
		event.EventType,
		string(event.Payload),
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// now is truncated to the precision PostgreSQL stores so a read returns
// exactly what was written.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
