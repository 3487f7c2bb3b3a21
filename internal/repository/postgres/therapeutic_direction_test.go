package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/openhealthcare/openehr-api/pkg/errors"
)

func TestTherapeuticDirectionRepository_DeleteCascades(t *testing.T) {
	base, mock := setupMockDB(t)
	repo := NewTherapeuticDirectionRepository(base)

	id := uuid.New()
	first, second := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM therapeutic_direction_dosage WHERE therapeutic_direction_id = $1 RETURNING id`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(first.String()).AddRow(second.String()))
	expectEvent(mock, "THERAPEUTIC_DIRECTION_DOSAGE_DELETE")
	expectEvent(mock, "THERAPEUTIC_DIRECTION_DOSAGE_DELETE")
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM therapeutic_direction WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectEvent(mock, "THERAPEUTIC_DIRECTION_DELETE")
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), id)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTherapeuticDirectionRepository_DeleteMissingRollsBack(t *testing.T) {
	base, mock := setupMockDB(t)
	repo := NewTherapeuticDirectionRepository(base)

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM therapeutic_direction_dosage`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`DELETE FROM therapeutic_direction WHERE`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), uuid.New())

	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTherapeuticDirectionRepository_ListDosages(t *testing.T) {
	base, mock := setupMockDB(t)
	repo := NewTherapeuticDirectionRepository(base)

	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM therapeutic_direction WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "created_at", "updated_at", "direction_sequence", "direction_duration",
			"direction_duration_seconds", "direction_duration_text", "maximum_administrations",
		}).AddRow(id.String(), now, now, 1, nil, 3600, nil, nil))
	mock.ExpectQuery(`FROM therapeutic_direction_dosage WHERE therapeutic_direction_id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "created_at", "updated_at", "therapeutic_direction_id", "dosage_sequence",
			"dose_amount_exact", "dose_amount_range_lower", "dose_amount_range_upper", "dose_unit",
		}).AddRow(uuid.New().String(), now, now, id.String(), 1, "2.500", nil, nil, "mg"))

	dosages, err := repo.ListDosages(context.Background(), id)

	require.NoError(t, err)
	require.Len(t, dosages, 1)
	assert.Equal(t, id, dosages[0].TherapeuticDirectionID)
	require.NotNil(t, dosages[0].DoseAmountExact)
	assert.InDelta(t, 2.5, *dosages[0].DoseAmountExact, 0.0001)
	assert.Equal(t, "mg", *dosages[0].DoseUnit)
	assert.NoError(t, mock.ExpectationsWereMet())
}
