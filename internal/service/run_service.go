package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sma-engine/masterschedule/internal/domain"
	"github.com/sma-engine/masterschedule/internal/dto"
	"github.com/sma-engine/masterschedule/internal/models"
	"github.com/sma-engine/masterschedule/internal/report"
	"github.com/sma-engine/masterschedule/internal/scheduling"
	appErrors "github.com/sma-engine/masterschedule/pkg/errors"
	"github.com/sma-engine/masterschedule/pkg/jobs"
)

type teacherSource interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type studentSource interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type courseSource interface {
	ListAll(ctx context.Context) ([]models.Course, error)
}

type roomSource interface {
	List(ctx context.Context) ([]models.Room, error)
}

type runStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, run *models.Run) error
	FindByID(ctx context.Context, id string) (*models.Run, error)
	List(ctx context.Context, status models.RunStatus, page, pageSize int) ([]models.Run, int, error)
	MarkCommitted(ctx context.Context, exec sqlx.ExtContext, id string) error
	SoftDelete(ctx context.Context, id string) error
}

type sectionStore interface {
	BulkInsertSections(ctx context.Context, exec sqlx.ExtContext, sections []models.Section) error
	BulkInsertRegistrations(ctx context.Context, exec sqlx.ExtContext, registrations []models.Registration) error
	BulkInsertAssignments(ctx context.Context, exec sqlx.ExtContext, assignments []models.Assignment) error
	ListByRun(ctx context.Context, runID string) ([]models.Section, error)
}

type runTxProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// RunServiceConfig governs how long a generated-but-uncommitted proposal
// stays addressable before it's evicted from memory.
type RunServiceConfig struct {
	ProposalTTL time.Duration
}

// RunService orchestrates the placement engine: building a proposal in
// memory from the current catalog, then persisting a committed proposal's
// sections, registrations, and teacher assignments.
type RunService struct {
	teachers  teacherSource
	students  studentSource
	courses   courseSource
	rooms     roomSource
	runs      runStore
	sections  sectionStore
	tx        runTxProvider
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	cache     *CacheService
	summaries *jobs.Queue
	store     *runProposalStore
}

// NewRunService wires the engine's data sources and persistence layer. When
// cache is enabled, a committed run's report summary is warmed into it
// off the request path through a small worker queue, since the commit
// itself must not wait on a cache round-trip to finish.
func NewRunService(
	teachers teacherSource,
	students studentSource,
	courses courseSource,
	rooms roomSource,
	runs runStore,
	sections sectionStore,
	tx runTxProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cache *CacheService,
	cfg RunServiceConfig,
) *RunService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}

	var summaries *jobs.Queue
	if cache != nil {
		summaries = jobs.NewQueue("run-summary-cache", func(ctx context.Context, job jobs.Job) error {
			payload, ok := job.Payload.(runSummaryCacheJob)
			if !ok {
				return fmt.Errorf("unexpected run summary cache payload %T", job.Payload)
			}
			return cache.Set(ctx, runSummaryCacheKey(payload.RunID), payload.Summary, 0)
		}, jobs.QueueConfig{Workers: 1, Logger: logger})
		summaries.Start(context.Background())
	}

	return &RunService{
		teachers:  teachers,
		students:  students,
		courses:   courses,
		rooms:     rooms,
		runs:      runs,
		sections:  sections,
		tx:        tx,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		cache:     cache,
		summaries: summaries,
		store:     newRunProposalStore(cfg.ProposalTTL),
	}
}

// Shutdown stops the background summary-cache queue. Call during graceful
// server shutdown.
func (s *RunService) Shutdown() {
	if s.summaries != nil {
		s.summaries.Stop()
	}
}

func runSummaryCacheKey(runID string) string {
	return fmt.Sprintf("run:summary:%s", runID)
}

type runSummaryCacheJob struct {
	RunID   string
	Summary report.Summary
}

// Generate loads the current faculty, roster, and catalog, runs the
// placement engine in memory, and caches the result under a fresh run ID.
// Nothing is persisted until Commit is called with that ID.
func (s *RunService) Generate(ctx context.Context, req dto.GenerateRunRequest, createdBy string) (*dto.GenerateRunResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid run generation payload")
	}

	teacherRows, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}
	studentRows, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	courseRows, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
	}
	roomRows, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if len(teacherRows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active teachers on file")
	}
	if len(roomRows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no rooms on file")
	}

	faculty := make(scheduling.Faculty, len(teacherRows))
	for _, row := range teacherRows {
		t := teacherFromRow(row)
		faculty[t.ID] = t
	}
	students := make([]domain.Student, 0, len(studentRows))
	for _, row := range studentRows {
		students = append(students, studentFromRow(row))
	}
	courses := make(map[string]domain.Course, len(courseRows))
	for _, row := range courseRows {
		c := courseFromRow(row)
		courses[c.ID] = c
	}
	rooms := make([]domain.Room, 0, len(roomRows))
	for _, row := range roomRows {
		rooms = append(rooms, roomFromRow(row))
	}

	started := time.Now()
	sched := scheduling.MakeSchedule(rooms)
	sched, stats := scheduling.Run(sched, faculty, courses, rooms, students, req.Seed, scheduling.RunOptions{ScheduleElectives: req.ScheduleElectives})
	duration := time.Since(started)

	summary := report.Generate(sched, students)

	if s.metrics != nil {
		s.metrics.RecordRunOutcomes(stats.Outcomes)
		s.metrics.ObserveRunDuration(duration)
		s.metrics.SetUnmetDemand(len(summary.MissingRequirements))
		s.metrics.SetLunchAnomalies(len(summary.LunchAnomalies))
	}

	runID := uuid.NewString()
	s.store.Save(runProposal{
		RunID:       runID,
		Seed:        req.Seed,
		Electives:   req.ScheduleElectives,
		Schedule:    sched,
		Students:    students,
		Summary:     summary,
		CreatedBy:   createdBy,
		RequestedAt: time.Now().UTC(),
	})

	s.logger.Sugar().Infow("schedule run generated",
		"runId", runID, "seed", req.Seed, "sections", len(sched.Sections()), "duration", duration)

	return &dto.GenerateRunResponse{
		RunID:               runID,
		Seed:                req.Seed,
		Sections:            sectionsToProposals(sched.Sections()),
		MissingRequirements: summary.MissingRequirements,
		BucketCounts:        summary.BucketCounts,
		LunchAnomalies:      summary.LunchAnomalies,
		Outcomes:            stats.Outcomes,
	}, nil
}

// Commit persists a cached proposal's sections, registrations, and teacher
// assignments, and flips the run header from draft to committed.
func (s *RunService) Commit(ctx context.Context, req dto.CommitRunRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commit payload")
	}
	proposal, ok := s.store.Get(req.RunID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "run proposal not found or expired")
	}
	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	summaryBytes, err := json.Marshal(proposal.Summary)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode run summary")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	run := &models.Run{
		ID:          proposal.RunID,
		Status:      models.RunStatusDraft,
		Seed:        proposal.Seed,
		Electives:   proposal.Electives,
		SummaryJSON: string(summaryBytes),
		CreatedBy:   proposal.CreatedBy,
		CreatedAt:   proposal.RequestedAt,
	}
	if err = s.runs.Create(ctx, tx, run); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create run header")
		return "", err
	}

	sections := proposal.Schedule.Sections()
	sectionRows := make([]models.Section, 0, len(sections))
	var registrations []models.Registration
	var assignments []models.Assignment
	for _, sec := range sections {
		sectionRows = append(sectionRows, models.Section{
			ID:               sec.ID,
			RunID:            run.ID,
			CourseID:         sec.CourseID,
			Period:           string(sec.Period),
			RoomNumber:       sec.RoomNumber,
			PrimaryTeacherID: sec.PrimaryTeacherID,
			CoTeacherID:      sec.CoTeacherID,
			Environment:      string(sec.Environment),
			MaxSize:          sec.MaxSize,
		})
		for _, studentID := range sec.Roster() {
			registrations = append(registrations, models.Registration{SectionID: sec.ID, StudentID: studentID})
		}
		if sec.PrimaryTeacherID != "" {
			assignments = append(assignments, models.Assignment{SectionID: sec.ID, TeacherID: sec.PrimaryTeacherID, Role: "PRIMARY"})
		}
		if sec.CoTeacherID != "" {
			assignments = append(assignments, models.Assignment{SectionID: sec.ID, TeacherID: sec.CoTeacherID, Role: "CO_TEACHER"})
		}
	}

	if err = s.sections.BulkInsertSections(ctx, tx, sectionRows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist sections")
		return "", err
	}
	if err = s.sections.BulkInsertRegistrations(ctx, tx, registrations); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist registrations")
		return "", err
	}
	if err = s.sections.BulkInsertAssignments(ctx, tx, assignments); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignments")
		return "", err
	}
	if err = s.runs.MarkCommitted(ctx, tx, run.ID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark run committed")
		return "", err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit run transaction")
		return "", err
	}

	s.store.Delete(req.RunID)
	s.logger.Sugar().Infow("schedule run committed", "runId", run.ID, "sections", len(sectionRows))

	if s.summaries != nil {
		job := jobs.Job{ID: run.ID, Type: "cache-run-summary", Payload: runSummaryCacheJob{RunID: run.ID, Summary: proposal.Summary}}
		if err := s.summaries.Enqueue(job); err != nil {
			s.logger.Sugar().Warnw("failed to enqueue run summary cache warm", "runId", run.ID, "error", err)
		}
	}

	return run.ID, nil
}

// GetSummary returns a run's report summary, preferring the cache over a
// round trip through the run header's stored JSON.
func (s *RunService) GetSummary(ctx context.Context, runID string) (report.Summary, error) {
	var summary report.Summary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, runSummaryCacheKey(runID), &summary); err == nil && hit {
			return summary, nil
		}
	}

	run, err := s.runs.FindByID(ctx, runID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report.Summary{}, appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return report.Summary{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run")
	}
	if run.SummaryJSON != "" {
		if err := json.Unmarshal([]byte(run.SummaryJSON), &summary); err != nil {
			return report.Summary{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode run summary")
		}
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, runSummaryCacheKey(runID), summary, 0)
	}
	return summary, nil
}

// List returns run headers, optionally filtered by status.
func (s *RunService) List(ctx context.Context, query dto.RunListQuery) ([]dto.RunSummary, int, error) {
	runs, total, err := s.runs.List(ctx, models.RunStatus(strings.ToUpper(query.Status)), query.Page, query.PageSize)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list runs")
	}
	out := make([]dto.RunSummary, 0, len(runs))
	for _, r := range runs {
		summary := dto.RunSummary{
			ID:        r.ID,
			Status:    string(r.Status),
			Seed:      r.Seed,
			Electives: r.Electives,
			CreatedBy: r.CreatedBy,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if r.CommittedAt != nil {
			summary.CommittedAt = r.CommittedAt.UTC().Format(time.RFC3339)
		}
		out = append(out, summary)
	}
	return out, total, nil
}

// GetSections returns the committed sections for a run.
func (s *RunService) GetSections(ctx context.Context, runID string) ([]models.Section, error) {
	if _, err := s.runs.FindByID(ctx, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run")
	}
	sections, err := s.sections.ListByRun(ctx, runID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list run sections")
	}
	return sections, nil
}

// Delete soft-deletes a run header, leaving any committed sections in place.
func (s *RunService) Delete(ctx context.Context, runID string) error {
	if _, err := s.runs.FindByID(ctx, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "run not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load run")
	}
	if err := s.runs.SoftDelete(ctx, runID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete run")
	}
	return nil
}

func sectionsToProposals(sections []domain.Section) []dto.SectionProposal {
	out := make([]dto.SectionProposal, 0, len(sections))
	for _, sec := range sections {
		out = append(out, dto.SectionProposal{
			ID:               sec.ID,
			CourseID:         sec.CourseID,
			Period:           string(sec.Period),
			RoomNumber:       sec.RoomNumber,
			PrimaryTeacherID: sec.PrimaryTeacherID,
			CoTeacherID:      sec.CoTeacherID,
			Environment:      string(sec.Environment),
			MaxSize:          sec.MaxSize,
			Roster:           sec.Roster(),
		})
	}
	return out
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func teacherFromRow(row models.Teacher) domain.Teacher {
	certs := splitCSV(row.Certifications)
	endorsements := make([]domain.Endorsement, 0, len(certs))
	for _, c := range certs {
		endorsements = append(endorsements, domain.Endorsement(c))
	}
	return domain.NewTeacher(row.ID, row.Name, endorsements, row.MaxSections, row.MaxPreps)
}

func studentFromRow(row models.Student) domain.Student {
	inclusion := departmentsFromCSV(row.InclusionTags)
	separate := departmentsFromCSV(row.SeparateClassTags)
	return domain.NewStudent(
		row.ID, row.Name, row.Grade,
		splitCSV(row.RequiredCourses), splitCSV(row.ElectiveCourses),
		inclusion, separate, row.NeedsSpedSeminar,
	)
}

func departmentsFromCSV(raw string) []domain.Department {
	tags := splitCSV(raw)
	out := make([]domain.Department, 0, len(tags))
	for _, t := range tags {
		out = append(out, domain.Department(strings.ToLower(t)))
	}
	return out
}

func courseFromRow(row models.Course) domain.Course {
	return domain.NewCourse(row.ID, row.Name, domain.Endorsement(row.RequiredEndorsement), row.MinSize, row.MaxSize)
}

func roomFromRow(row models.Room) domain.Room {
	return domain.NewRoom(row.Number, domain.RoomType(row.Type), row.MaxCapacity)
}

// --- Proposal cache ---

type runProposal struct {
	RunID       string
	Seed        int64
	Electives   bool
	Schedule    scheduling.Schedule
	Students    []domain.Student
	Summary     report.Summary
	CreatedBy   string
	RequestedAt time.Time
}

type runProposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]runProposal
}

func newRunProposalStore(ttl time.Duration) *runProposalStore {
	return &runProposalStore{ttl: ttl, items: make(map[string]runProposal)}
}

func (s *runProposalStore) Save(proposal runProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.RunID] = proposal
}

func (s *runProposalStore) Get(id string) (runProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return runProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return runProposal{}, false
	}
	return proposal, true
}

func (s *runProposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
