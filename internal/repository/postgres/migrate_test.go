package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrator_LoadMigrations(t *testing.T) {
	migrations, err := NewMigrator(nil).LoadMigrations()

	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "001_init.sql", migrations[0].Name)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE outbox_events")
}

func TestMigrator_Up(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	migrator := NewMigrator(sqlx.NewDb(db, "postgres"))

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version, name, applied_at FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE identifier`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs(1, "001_init.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := migrator.Up(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_UpSkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	migrator := NewMigrator(sqlx.NewDb(db, "postgres"))

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version, name, applied_at FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version", "name", "applied_at"}).
			AddRow(1, "001_init.sql", time.Now()))

	applied, err := migrator.Up(context.Background())

	require.NoError(t, err)
	assert.Zero(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
