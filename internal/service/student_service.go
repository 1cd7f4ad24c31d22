package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sma-engine/masterschedule/internal/models"
	appErrors "github.com/sma-engine/masterschedule/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// CreateStudentRequest is the payload for enrolling a student in the catalog.
// RequiredCourses/ElectiveCourses/InclusionTags/SeparateClassTags are
// comma-separated lists stored verbatim; the scheduling engine splits them
// at run time.
type CreateStudentRequest struct {
	Name              string `json:"name" validate:"required"`
	Grade             string `json:"grade" validate:"required"`
	RequiredCourses   string `json:"requiredCourses"`
	ElectiveCourses   string `json:"electiveCourses"`
	InclusionTags     string `json:"inclusionTags"`
	SeparateClassTags string `json:"separateClassTags"`
	NeedsSpedSeminar  bool   `json:"needsSpedSeminar"`
}

// UpdateStudentRequest is the payload for editing a student record.
type UpdateStudentRequest struct {
	Name              string `json:"name" validate:"required"`
	Grade             string `json:"grade" validate:"required"`
	RequiredCourses   string `json:"requiredCourses"`
	ElectiveCourses   string `json:"electiveCourses"`
	InclusionTags     string `json:"inclusionTags"`
	SeparateClassTags string `json:"separateClassTags"`
	NeedsSpedSeminar  bool   `json:"needsSpedSeminar"`
}

// StudentService orchestrates student CRUD. The scheduling engine reads
// its own student roster straight from the repository at run time (see
// RunService.students) rather than through this service.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return students, pagination, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student := &models.Student{
		Name:              strings.TrimSpace(req.Name),
		Grade:             strings.TrimSpace(req.Grade),
		RequiredCourses:   strings.TrimSpace(req.RequiredCourses),
		ElectiveCourses:   strings.TrimSpace(req.ElectiveCourses),
		InclusionTags:     strings.TrimSpace(req.InclusionTags),
		SeparateClassTags: strings.TrimSpace(req.SeparateClassTags),
		NeedsSpedSeminar:  req.NeedsSpedSeminar,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student.Name = strings.TrimSpace(req.Name)
	student.Grade = strings.TrimSpace(req.Grade)
	student.RequiredCourses = strings.TrimSpace(req.RequiredCourses)
	student.ElectiveCourses = strings.TrimSpace(req.ElectiveCourses)
	student.InclusionTags = strings.TrimSpace(req.InclusionTags)
	student.SeparateClassTags = strings.TrimSpace(req.SeparateClassTags)
	student.NeedsSpedSeminar = req.NeedsSpedSeminar

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student from the catalog.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
