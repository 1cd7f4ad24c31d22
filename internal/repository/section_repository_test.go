package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sma-engine/masterschedule/internal/models"
)

func newSectionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSectionRepositoryBulkInsertSections(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sections")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sections")).WillReturnResult(sqlmock.NewResult(1, 1))

	sections := []models.Section{
		{RunID: "run-1", CourseID: "ENG9", Period: "1st", MaxSize: 30},
		{RunID: "run-1", CourseID: "MATH9", Period: "2nd", MaxSize: 30},
	}
	err := repo.BulkInsertSections(context.Background(), nil, sections)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryListByRun(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "run_id", "course_id", "period", "room_number", "primary_teacher_id", "co_teacher_id", "environment", "max_size", "created_at"}).
		AddRow("sec-1", "run-1", "ENG9", "1st", "101", "t1", "", "GEN_ED", 30, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, run_id, course_id, period, room_number, primary_teacher_id, co_teacher_id, environment, max_size, created_at FROM sections WHERE run_id = $1 ORDER BY period ASC")).
		WithArgs("run-1").
		WillReturnRows(rows)

	sections, err := repo.ListByRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Len(t, sections, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryBulkInsertRegistrations(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO registrations")).WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.BulkInsertRegistrations(context.Background(), nil, []models.Registration{{SectionID: "sec-1", StudentID: "stu-1"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
