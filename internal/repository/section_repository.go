package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sma-engine/masterschedule/internal/models"
)

// SectionRepository persists the committed sections, registrations, and
// assignments produced by a schedule run.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

func (r *SectionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkInsertSections stores the sections produced by a committed run.
func (r *SectionRepository) BulkInsertSections(ctx context.Context, exec sqlx.ExtContext, sections []models.Section) error {
	if len(sections) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()
	const query = `INSERT INTO sections (id, run_id, course_id, period, room_number, primary_teacher_id, co_teacher_id, environment, max_size, created_at)
VALUES (:id, :run_id, :course_id, :period, :room_number, :primary_teacher_id, :co_teacher_id, :environment, :max_size, :created_at)`

	for i := range sections {
		section := &sections[i]
		if section.ID == "" {
			section.ID = uuid.NewString()
		}
		if section.CreatedAt.IsZero() {
			section.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, section); err != nil {
			return fmt.Errorf("insert committed section: %w", err)
		}
	}
	return nil
}

// BulkInsertRegistrations stores student-to-section seat assignments.
func (r *SectionRepository) BulkInsertRegistrations(ctx context.Context, exec sqlx.ExtContext, registrations []models.Registration) error {
	if len(registrations) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()
	const query = `INSERT INTO registrations (id, section_id, student_id, created_at) VALUES (:id, :section_id, :student_id, :created_at)`

	for i := range registrations {
		reg := &registrations[i]
		if reg.ID == "" {
			reg.ID = uuid.NewString()
		}
		if reg.CreatedAt.IsZero() {
			reg.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, reg); err != nil {
			return fmt.Errorf("insert registration: %w", err)
		}
	}
	return nil
}

// BulkInsertAssignments stores teacher-to-section role assignments.
func (r *SectionRepository) BulkInsertAssignments(ctx context.Context, exec sqlx.ExtContext, assignments []models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()
	const query = `INSERT INTO assignments (id, section_id, teacher_id, role, created_at) VALUES (:id, :section_id, :teacher_id, :role, :created_at)`

	for i := range assignments {
		assignment := &assignments[i]
		if assignment.ID == "" {
			assignment.ID = uuid.NewString()
		}
		if assignment.CreatedAt.IsZero() {
			assignment.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, assignment); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}
	return nil
}

// ListByRun returns the committed sections for a run ordered by period.
func (r *SectionRepository) ListByRun(ctx context.Context, runID string) ([]models.Section, error) {
	const query = `SELECT id, run_id, course_id, period, room_number, primary_teacher_id, co_teacher_id, environment, max_size, created_at
FROM sections WHERE run_id = $1 ORDER BY period ASC`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, runID); err != nil {
		return nil, fmt.Errorf("list sections by run: %w", err)
	}
	return sections, nil
}

// ListRegistrationsBySection returns the registrations for a committed section.
func (r *SectionRepository) ListRegistrationsBySection(ctx context.Context, sectionID string) ([]models.Registration, error) {
	const query = `SELECT id, section_id, student_id, created_at FROM registrations WHERE section_id = $1`
	var registrations []models.Registration
	if err := r.db.SelectContext(ctx, &registrations, query, sectionID); err != nil {
		return nil, fmt.Errorf("list registrations by section: %w", err)
	}
	return registrations, nil
}

// ListAssignmentsBySection returns the teacher assignments for a committed section.
func (r *SectionRepository) ListAssignmentsBySection(ctx context.Context, sectionID string) ([]models.Assignment, error) {
	const query = `SELECT id, section_id, teacher_id, role, created_at FROM assignments WHERE section_id = $1`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, sectionID); err != nil {
		return nil, fmt.Errorf("list assignments by section: %w", err)
	}
	return assignments, nil
}

// ListStudentSchedule returns the sections a student is registered in across a run.
func (r *SectionRepository) ListStudentSchedule(ctx context.Context, runID, studentID string) ([]models.Section, error) {
	const query = `SELECT s.id, s.run_id, s.course_id, s.period, s.room_number, s.primary_teacher_id, s.co_teacher_id, s.environment, s.max_size, s.created_at
FROM sections s JOIN registrations r ON r.section_id = s.id
WHERE s.run_id = $1 AND r.student_id = $2 ORDER BY s.period ASC`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, runID, studentID); err != nil {
		return nil, fmt.Errorf("list student schedule: %w", err)
	}
	return sections, nil
}
