package models

import "time"

// RunStatus is the lifecycle state of a schedule run.
type RunStatus string

const (
	RunStatusDraft     RunStatus = "DRAFT"
	RunStatusCommitted RunStatus = "COMMITTED"
	RunStatusDeleted   RunStatus = "DELETED"
)

// Run is the persisted row form of a single engine invocation: the inputs
// that produced it (seed, elective flag) and, once committed, a pointer to
// the durable sections it produced.
type Run struct {
	ID          string     `db:"id" json:"id"`
	Status      RunStatus  `db:"status" json:"status"`
	Seed        int64      `db:"seed" json:"seed"`
	Electives   bool       `db:"electives" json:"electives"`
	SummaryJSON string     `db:"summary_json" json:"summaryJson"`
	CreatedBy   string     `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	CommittedAt *time.Time `db:"committed_at" json:"committedAt,omitempty"`
}

// Section is the persisted row form of a committed section.
type Section struct {
	ID               string    `db:"id" json:"id"`
	RunID            string    `db:"run_id" json:"runId"`
	CourseID         string    `db:"course_id" json:"courseId"`
	Period           string    `db:"period" json:"period"`
	RoomNumber       string    `db:"room_number" json:"roomNumber"`
	PrimaryTeacherID string    `db:"primary_teacher_id" json:"primaryTeacherId"`
	CoTeacherID      string    `db:"co_teacher_id" json:"coTeacherId,omitempty"`
	Environment      string    `db:"environment" json:"environment"`
	MaxSize          int       `db:"max_size" json:"maxSize"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

// Registration is the persisted row form of a student's seat in a
// committed section.
type Registration struct {
	ID        string    `db:"id" json:"id"`
	SectionID string    `db:"section_id" json:"sectionId"`
	StudentID string    `db:"student_id" json:"studentId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Assignment is the persisted row form of a teacher's role on a committed
// section (primary or co-teacher).
type Assignment struct {
	ID        string    `db:"id" json:"id"`
	SectionID string    `db:"section_id" json:"sectionId"`
	TeacherID string    `db:"teacher_id" json:"teacherId"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
