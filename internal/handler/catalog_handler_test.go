package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sma-engine/masterschedule/internal/dto"
	"github.com/sma-engine/masterschedule/internal/models"
	"github.com/sma-engine/masterschedule/internal/service"
)

type catalogStubTeacherWriter struct{ upserted []models.Teacher }

func (s *catalogStubTeacherWriter) Upsert(ctx context.Context, teacher *models.Teacher) error {
	s.upserted = append(s.upserted, *teacher)
	return nil
}

type catalogStubStudentWriter struct{ upserted []models.Student }

func (s *catalogStubStudentWriter) Upsert(ctx context.Context, student *models.Student) error {
	s.upserted = append(s.upserted, *student)
	return nil
}

type catalogStubCourseWriter struct{ upserted []models.Course }

func (s *catalogStubCourseWriter) Upsert(ctx context.Context, course *models.Course) error {
	s.upserted = append(s.upserted, *course)
	return nil
}

type catalogStubRoomWriter struct{ upserted []models.Room }

func (s *catalogStubRoomWriter) Upsert(ctx context.Context, room *models.Room) error {
	s.upserted = append(s.upserted, *room)
	return nil
}

func TestCatalogHandlerImport(t *testing.T) {
	gin.SetMode(gin.TestMode)

	teachers := &catalogStubTeacherWriter{}
	students := &catalogStubStudentWriter{}
	courses := &catalogStubCourseWriter{}
	rooms := &catalogStubRoomWriter{}

	svc := service.NewCatalogImportService(teachers, students, courses, rooms, nil, zap.NewNop())
	handler := NewCatalogHandler(svc)

	payload, _ := json.Marshal(dto.CatalogImportRequest{
		Teachers: []dto.TeacherImportRow{{ID: "t 1!", Name: "Teacher A", Email: "a@example.com", Certifications: "math"}},
		Students: []dto.StudentImportRow{{ID: "s 1!", Name: "Student A", Grade: "9"}},
		Courses:  []dto.CourseImportRow{{ID: "c 1!", Name: "Algebra I", RequiredEndorsement: "math"}},
		Rooms:    []dto.RoomImportRow{{ID: "r 1!", Number: "101", Type: "standard"}},
	})
	c, w := newGinContext(http.MethodPost, "/catalog/import", payload)

	handler.Import(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data dto.CatalogImportResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Data.TeachersImported)
	require.Equal(t, 1, body.Data.StudentsImported)
	require.Equal(t, 1, body.Data.CoursesImported)
	require.Equal(t, 1, body.Data.RoomsImported)

	require.Len(t, teachers.upserted, 1)
	require.Equal(t, "t-1", teachers.upserted[0].ID)
	require.Len(t, students.upserted, 1)
	require.Equal(t, "s-1", students.upserted[0].ID)
}

func TestCatalogHandlerImportInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := service.NewCatalogImportService(&catalogStubTeacherWriter{}, &catalogStubStudentWriter{}, &catalogStubCourseWriter{}, &catalogStubRoomWriter{}, nil, zap.NewNop())
	handler := NewCatalogHandler(svc)

	c, w := newGinContext(http.MethodPost, "/catalog/import", []byte("not json"))

	handler.Import(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
