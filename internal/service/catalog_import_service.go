package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sma-engine/masterschedule/internal/dto"
	"github.com/sma-engine/masterschedule/internal/models"
	appErrors "github.com/sma-engine/masterschedule/pkg/errors"
)

type catalogTeacherWriter interface {
	Upsert(ctx context.Context, teacher *models.Teacher) error
}

type catalogStudentWriter interface {
	Upsert(ctx context.Context, student *models.Student) error
}

type catalogCourseWriter interface {
	Upsert(ctx context.Context, course *models.Course) error
}

type catalogRoomWriter interface {
	Upsert(ctx context.Context, room *models.Room) error
}

// CatalogImportService validates and persists a batch of teacher/student/
// course/room rows at once, the way a registrar uploads a new school
// year's rosters before the first run. Every row is upserted by its
// (normalized) ID, so re-running an import is safe.
type CatalogImportService struct {
	teachers  catalogTeacherWriter
	students  catalogStudentWriter
	courses   catalogCourseWriter
	rooms     catalogRoomWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogImportService constructs a CatalogImportService.
func NewCatalogImportService(teachers catalogTeacherWriter, students catalogStudentWriter, courses catalogCourseWriter, rooms catalogRoomWriter, validate *validator.Validate, logger *zap.Logger) *CatalogImportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogImportService{teachers: teachers, students: students, courses: courses, rooms: rooms, validator: validate, logger: logger}
}

// Import validates every row in the batch before writing any of it, then
// upserts each kind in turn.
func (s *CatalogImportService) Import(ctx context.Context, req dto.CatalogImportRequest) (*dto.CatalogImportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid catalog import payload")
	}

	for _, row := range req.Teachers {
		teacher := &models.Teacher{
			ID:             dto.NormalizeIdentifier(row.ID),
			Name:           row.Name,
			Email:          row.Email,
			Certifications: row.Certifications,
			MaxSections:    row.MaxSections,
			MaxPreps:       row.MaxPreps,
		}
		if err := s.teachers.Upsert(ctx, teacher); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import teacher "+row.ID)
		}
	}

	for _, row := range req.Students {
		student := &models.Student{
			ID:                dto.NormalizeIdentifier(row.ID),
			Name:              row.Name,
			Grade:             row.Grade,
			RequiredCourses:   row.RequiredCourses,
			ElectiveCourses:   row.ElectiveCourses,
			InclusionTags:     row.InclusionTags,
			SeparateClassTags: row.SeparateClassTags,
			NeedsSpedSeminar:  row.NeedsSpedSeminar,
		}
		if err := s.students.Upsert(ctx, student); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import student "+row.ID)
		}
	}

	for _, row := range req.Courses {
		course := &models.Course{
			ID:                  dto.NormalizeIdentifier(row.ID),
			Name:                row.Name,
			RequiredEndorsement: row.RequiredEndorsement,
			MinSize:             row.MinSize,
			MaxSize:             row.MaxSize,
		}
		if err := s.courses.Upsert(ctx, course); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import course "+row.ID)
		}
	}

	for _, row := range req.Rooms {
		room := &models.Room{
			ID:          dto.NormalizeIdentifier(row.ID),
			Number:      row.Number,
			Type:        row.Type,
			MaxCapacity: row.MaxCapacity,
		}
		if err := s.rooms.Upsert(ctx, room); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import room "+row.ID)
		}
	}

	return &dto.CatalogImportResponse{
		TeachersImported: len(req.Teachers),
		StudentsImported: len(req.Students),
		CoursesImported:  len(req.Courses),
		RoomsImported:    len(req.Rooms),
	}, nil
}
