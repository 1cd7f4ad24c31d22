package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sma-engine/masterschedule/internal/dto"
	"github.com/sma-engine/masterschedule/internal/models"
	"github.com/sma-engine/masterschedule/internal/service"
)

type handlerStubTeacherSource struct{ rows []models.Teacher }

func (s handlerStubTeacherSource) ListActive(ctx context.Context) ([]models.Teacher, error) {
	return s.rows, nil
}

type handlerStubStudentSource struct{ rows []models.Student }

func (s handlerStubStudentSource) ListAll(ctx context.Context) ([]models.Student, error) {
	return s.rows, nil
}

type handlerStubCourseSource struct{ rows []models.Course }

func (s handlerStubCourseSource) ListAll(ctx context.Context) ([]models.Course, error) {
	return s.rows, nil
}

type handlerStubRoomSource struct{ rows []models.Room }

func (s handlerStubRoomSource) List(ctx context.Context) ([]models.Room, error) { return s.rows, nil }

type handlerFakeRunStore struct{ created []*models.Run }

func (f *handlerFakeRunStore) Create(ctx context.Context, exec sqlx.ExtContext, run *models.Run) error {
	f.created = append(f.created, run)
	return nil
}

func (f *handlerFakeRunStore) FindByID(ctx context.Context, id string) (*models.Run, error) {
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *handlerFakeRunStore) List(ctx context.Context, status models.RunStatus, page, pageSize int) ([]models.Run, int, error) {
	return nil, 0, nil
}

func (f *handlerFakeRunStore) MarkCommitted(ctx context.Context, exec sqlx.ExtContext, id string) error {
	return nil
}

func (f *handlerFakeRunStore) SoftDelete(ctx context.Context, id string) error { return nil }

type handlerFakeSectionStore struct{ sections []models.Section }

func (f *handlerFakeSectionStore) BulkInsertSections(ctx context.Context, exec sqlx.ExtContext, sections []models.Section) error {
	f.sections = append(f.sections, sections...)
	return nil
}

func (f *handlerFakeSectionStore) BulkInsertRegistrations(ctx context.Context, exec sqlx.ExtContext, registrations []models.Registration) error {
	return nil
}

func (f *handlerFakeSectionStore) BulkInsertAssignments(ctx context.Context, exec sqlx.ExtContext, assignments []models.Assignment) error {
	return nil
}

func (f *handlerFakeSectionStore) ListByRun(ctx context.Context, runID string) ([]models.Section, error) {
	return f.sections, nil
}

func newRunHandlerForTest(t *testing.T) *RunHandler {
	t.Helper()
	teachers := handlerStubTeacherSource{rows: []models.Teacher{
		{ID: "t1", Name: "Teacher A", Certifications: "math", MaxSections: 5, MaxPreps: 2, Active: true},
	}}
	students := handlerStubStudentSource{rows: []models.Student{
		{ID: "s1", Name: "Student A", Grade: "9", RequiredCourses: "c1"},
	}}
	courses := handlerStubCourseSource{rows: []models.Course{
		{ID: "c1", Name: "Algebra I", RequiredEndorsement: "math", MinSize: 1, MaxSize: 30},
	}}
	rooms := handlerStubRoomSource{rows: []models.Room{
		{Number: "101", Type: "standard", MaxCapacity: 30},
	}}
	svc := service.NewRunService(teachers, students, courses, rooms, &handlerFakeRunStore{}, &handlerFakeSectionStore{}, nil, nil, zap.NewNop(), nil, nil, service.RunServiceConfig{})
	t.Cleanup(svc.Shutdown)
	return NewRunHandler(svc)
}

func TestRunHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRunHandlerForTest(t)

	payload, _ := json.Marshal(dto.GenerateRunRequest{Seed: 1})
	c, w := newGinContext(http.MethodPost, "/runs", payload)

	handler.Generate(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data dto.GenerateRunResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.RunID)
}

func TestRunHandlerGenerateInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRunHandlerForTest(t)

	c, w := newGinContext(http.MethodPost, "/runs", []byte("not json"))

	handler.Generate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newRunHandlerForTest(t)

	c, w := newGinContext(http.MethodDelete, "/runs/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Delete(c)
	require.NotEqual(t, http.StatusNoContent, w.Code)
}
