package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/openhealthcare/openehr-api/internal/model"
	"github.com/openhealthcare/openehr-api/internal/repository"
)

type therapeuticDirectionRepository struct {
	*recordRepository[*model.TherapeuticDirection]
	dosages table
}

func NewTherapeuticDirectionRepository(base BaseRepository) repository.TherapeuticDirectionRepository {
	return &therapeuticDirectionRepository{
		recordRepository: newRecordRepository[*model.TherapeuticDirection](base, model.KindTherapeuticDirection),
		dosages:          tableFor(model.KindTherapeuticDirectionDosage),
	}
}

// Delete removes the direction and its dosages in one transaction,
// emitting a DELETE event for each dosage before the direction's own.
func (r *therapeuticDirectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var dosageIDs []uuid.UUID
		query := fmt.Sprintf("DELETE FROM %s WHERE therapeutic_direction_id = $1 RETURNING id", r.dosages.name)
		if err := tx.SelectContext(ctx, &dosageIDs, query, id); err != nil {
			return fmt.Errorf("failed to delete dosages: %w", err)
		}

		for _, dosageID := range dosageIDs {
			err := r.insertEvent(ctx, tx, model.RecordEvent{
				Kind:     model.KindTherapeuticDirectionDosage,
				Action:   model.ActionDelete,
				RecordID: dosageID,
			})
			if err != nil {
				return err
			}
		}

		return r.delete(ctx, tx, id)
	})
}

func (r *therapeuticDirectionRepository) ListDosages(ctx context.Context, directionID uuid.UUID) ([]*model.TherapeuticDirectionDosage, error) {
	if _, err := r.Get(ctx, directionID); err != nil {
		return nil, err
	}

	query := r.dosages.selectQuery() + " WHERE therapeutic_direction_id = $1 ORDER BY dosage_sequence NULLS LAST, created_at, id"
	dosages := []*model.TherapeuticDirectionDosage{}
	if err := r.db.SelectContext(ctx, &dosages, query, directionID); err != nil {
		return nil, fmt.Errorf("failed to list dosages: %w", err)
	}
	return dosages, nil
}
