package domain

import "sort"

// Environment classifies how a section is staffed and who it serves.
type Environment string

const (
	EnvGenEd         Environment = "gen-ed"
	EnvInclusion     Environment = "inclusion"
	EnvSeparateClass Environment = "separate-class"
)

// Section is a single scheduled offering of a course. Sections are value
// types: every mutation (roster, co-teacher, environment) returns a new
// Section rather than mutating in place, so the schedule that owns them can
// stay a persistent, structurally-shared map.
type Section struct {
	ID               string
	CourseID         string
	Period           Period
	RoomNumber       string
	PrimaryTeacherID string
	CoTeacherID      string
	Environment      Environment
	MaxSize          int
	roster           map[string]bool
}

// NewSection creates an empty section.
func NewSection(id, courseID string, period Period, room, primaryTeacherID string, env Environment, maxSize int) Section {
	return Section{
		ID:               id,
		CourseID:         courseID,
		Period:           period,
		RoomNumber:       room,
		PrimaryTeacherID: primaryTeacherID,
		Environment:      env,
		MaxSize:          maxSize,
		roster:           map[string]bool{},
	}
}

// Roster returns the enrolled student IDs in sorted order.
func (s Section) Roster() []string {
	out := make([]string, 0, len(s.roster))
	for id := range s.roster {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Size reports the current roster count.
func (s Section) Size() int {
	return len(s.roster)
}

// HasStudent reports whether studentID is already enrolled.
func (s Section) HasStudent(studentID string) bool {
	return s.roster[studentID]
}

// HasSpace reports whether another student can be added without exceeding
// MaxSize.
func (s Section) HasSpace() bool {
	return s.Size() < s.MaxSize
}

// WithStudent returns a copy of the section with studentID enrolled.
func (s Section) WithStudent(studentID string) Section {
	next := s.cloneRoster()
	next.roster[studentID] = true
	return next
}

// WithoutStudent returns a copy of the section with studentID removed.
func (s Section) WithoutStudent(studentID string) Section {
	next := s.cloneRoster()
	delete(next.roster, studentID)
	return next
}

// WithCoTeacher returns a copy of the section with a co-teacher attached.
func (s Section) WithCoTeacher(teacherID string) Section {
	next := s
	next.roster = s.roster
	next.CoTeacherID = teacherID
	return next
}

// WithEnvironment returns a copy of the section promoted/demoted to env.
func (s Section) WithEnvironment(env Environment) Section {
	next := s
	next.roster = s.roster
	next.Environment = env
	return next
}

// WithPrimaryTeacher returns a copy of the section with a primary teacher
// assigned, for sections seeded without one (lunch, unfilled seminars).
func (s Section) WithPrimaryTeacher(teacherID string) Section {
	next := s
	next.roster = s.roster
	next.PrimaryTeacherID = teacherID
	return next
}

func (s Section) cloneRoster() Section {
	next := s
	m := make(map[string]bool, len(s.roster)+1)
	for id := range s.roster {
		m[id] = true
	}
	next.roster = m
	return next
}
