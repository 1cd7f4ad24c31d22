package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sma-engine/masterschedule/internal/models"
)

func newRunRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRunRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs")).WillReturnResult(sqlmock.NewResult(1, 1))

	run := &models.Run{Seed: 42, CreatedBy: "registrar-1"}
	err := repo.Create(context.Background(), nil, run)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusDraft, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "status", "seed", "electives", "summary_json", "created_by", "created_at", "committed_at"}).
		AddRow("run-1", string(models.RunStatusDraft), 42, true, "{}", "registrar-1", time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, status, seed, electives, summary_json, created_by, created_at, committed_at FROM runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := repo.FindByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusDraft, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryMarkCommitted(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE runs SET status = $1, committed_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs(string(models.RunStatusCommitted), sqlmock.AnyArg(), "run-1", string(models.RunStatusDraft)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.MarkCommitted(context.Background(), nil, "run-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryMarkCommittedNotFound(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE runs SET status = $1, committed_at = $2 WHERE id = $3 AND status = $4")).
		WithArgs(string(models.RunStatusCommitted), sqlmock.AnyArg(), "run-1", string(models.RunStatusDraft)).
		WillReturnResult(sqlmock.NewResult(1, 0))

	err := repo.MarkCommitted(context.Background(), nil, "run-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
