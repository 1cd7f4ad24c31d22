package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sma-engine/masterschedule/internal/models"
)

// RunRepository persists engine run headers across draft and commit.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository constructs a RunRepository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a draft run header.
func (r *RunRepository) Create(ctx context.Context, exec sqlx.ExtContext, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.RunStatusDraft
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	target := r.exec(exec)
	const query = `INSERT INTO runs (id, status, seed, electives, summary_json, created_by, created_at, committed_at)
VALUES (:id, :status, :seed, :electives, :summary_json, :created_by, :created_at, :committed_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, query, run); err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FindByID loads a run by its identifier.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*models.Run, error) {
	const query = `SELECT id, status, seed, electives, summary_json, created_by, created_at, committed_at FROM runs WHERE id = $1`
	var run models.Run
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns run headers ordered newest first, optionally filtered by status.
func (r *RunRepository) List(ctx context.Context, status models.RunStatus, page, pageSize int) ([]models.Run, int, error) {
	base := "FROM runs WHERE status <> $1"
	args := []interface{}{models.RunStatusDeleted}
	if status != "" {
		base = "FROM runs WHERE status = $1"
		args = []interface{}{status}
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf("SELECT id, status, seed, electives, summary_json, created_by, created_at, committed_at %s ORDER BY created_at DESC LIMIT %d OFFSET %d", base, pageSize, offset)
	var runs []models.Run
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}
	return runs, total, nil
}

// MarkCommitted flips a run to COMMITTED and stamps the commit time.
func (r *RunRepository) MarkCommitted(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	now := time.Now().UTC()
	const query = `UPDATE runs SET status = $1, committed_at = $2 WHERE id = $3 AND status = $4`
	result, err := target.ExecContext(ctx, query, models.RunStatusCommitted, now, id, models.RunStatusDraft)
	if err != nil {
		return fmt.Errorf("mark run committed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("run commit rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete marks a run deleted without removing its committed sections.
func (r *RunRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE runs SET status = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, models.RunStatusDeleted, id); err != nil {
		return fmt.Errorf("soft delete run: %w", err)
	}
	return nil
}
