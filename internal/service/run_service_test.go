package service

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sma-engine/masterschedule/internal/dto"
	"github.com/sma-engine/masterschedule/internal/models"
)

type stubTeacherSource struct{ rows []models.Teacher }

func (s stubTeacherSource) ListActive(ctx context.Context) ([]models.Teacher, error) { return s.rows, nil }

type stubStudentSource struct{ rows []models.Student }

func (s stubStudentSource) ListAll(ctx context.Context) ([]models.Student, error) { return s.rows, nil }

type stubCourseSource struct{ rows []models.Course }

func (s stubCourseSource) ListAll(ctx context.Context) ([]models.Course, error) { return s.rows, nil }

type stubRoomSource struct{ rows []models.Room }

func (s stubRoomSource) List(ctx context.Context) ([]models.Room, error) { return s.rows, nil }

type fakeRunStore struct {
	created []*models.Run
}

func (f *fakeRunStore) Create(ctx context.Context, exec sqlx.ExtContext, run *models.Run) error {
	f.created = append(f.created, run)
	if exec != nil {
		if _, err := exec.ExecContext(ctx, "INSERT INTO runs (id) VALUES ($1)", run.ID); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRunStore) FindByID(ctx context.Context, id string) (*models.Run, error) {
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRunStore) List(ctx context.Context, status models.RunStatus, page, pageSize int) ([]models.Run, int, error) {
	return nil, 0, nil
}

func (f *fakeRunStore) MarkCommitted(ctx context.Context, exec sqlx.ExtContext, id string) error {
	for _, r := range f.created {
		if r.ID == id {
			r.Status = models.RunStatusCommitted
		}
	}
	if exec != nil {
		if _, err := exec.ExecContext(ctx, "UPDATE runs SET status = $1 WHERE id = $2", string(models.RunStatusCommitted), id); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRunStore) SoftDelete(ctx context.Context, id string) error { return nil }

type fakeSectionStore struct {
	sections []models.Section
}

func (f *fakeSectionStore) BulkInsertSections(ctx context.Context, exec sqlx.ExtContext, sections []models.Section) error {
	f.sections = append(f.sections, sections...)
	return nil
}

func (f *fakeSectionStore) BulkInsertRegistrations(ctx context.Context, exec sqlx.ExtContext, registrations []models.Registration) error {
	return nil
}

func (f *fakeSectionStore) BulkInsertAssignments(ctx context.Context, exec sqlx.ExtContext, assignments []models.Assignment) error {
	return nil
}

func (f *fakeSectionStore) ListByRun(ctx context.Context, runID string) ([]models.Section, error) {
	return f.sections, nil
}

func newRunServiceForTest(t *testing.T) (*RunService, *fakeRunStore, *fakeSectionStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	teachers := stubTeacherSource{rows: []models.Teacher{
		{ID: "t1", Name: "Teacher A", Certifications: "math", MaxSections: 5, MaxPreps: 2, Active: true},
	}}
	students := stubStudentSource{rows: []models.Student{
		{ID: "s1", Name: "Student A", Grade: "9", RequiredCourses: "c1"},
	}}
	courses := stubCourseSource{rows: []models.Course{
		{ID: "c1", Name: "Algebra I", RequiredEndorsement: "math", MinSize: 1, MaxSize: 30},
	}}
	rooms := stubRoomSource{rows: []models.Room{
		{Number: "101", Type: "standard", MaxCapacity: 30},
	}}

	runs := &fakeRunStore{}
	sections := &fakeSectionStore{}
	svc := NewRunService(teachers, students, courses, rooms, runs, sections, sqlxDB, nil, zap.NewNop(), nil, nil, RunServiceConfig{})
	return svc, runs, sections, mock
}

func TestRunServiceGenerateThenCommit(t *testing.T) {
	svc, runs, sections, mock := newRunServiceForTest(t)
	defer svc.Shutdown()

	genResp, err := svc.Generate(context.Background(), dto.GenerateRunRequest{Seed: 1}, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, genResp.RunID)
	assert.NotEmpty(t, genResp.Sections)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO runs")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE runs SET status")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	runID, err := svc.Commit(context.Background(), dto.CommitRunRequest{RunID: genResp.RunID})
	require.NoError(t, err)
	assert.Equal(t, genResp.RunID, runID)
	assert.Len(t, runs.created, 1)
	assert.NotEmpty(t, sections.sections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunServiceCommitUnknownProposal(t *testing.T) {
	svc, _, _, _ := newRunServiceForTest(t)
	defer svc.Shutdown()

	_, err := svc.Commit(context.Background(), dto.CommitRunRequest{RunID: "missing"})
	require.Error(t, err)
}

func TestRunServiceGenerateRequiresTeachersAndRooms(t *testing.T) {
	svc, _, _, _ := newRunServiceForTest(t)
	defer svc.Shutdown()
	svc.teachers = stubTeacherSource{}

	_, err := svc.Generate(context.Background(), dto.GenerateRunRequest{Seed: 1}, "admin")
	require.Error(t, err)
}
