// Package scheduling implements the placement engine: the persistent
// Schedule value, the constraint checks placement decisions are made
// against, ticket prioritization, and the greedy placement loop itself.
package scheduling

import (
	"sort"

	"github.com/sma-engine/masterschedule/internal/domain"
)

// Schedule is the engine's working state: a persistent map from section ID
// to Section. Every mutating method returns a new Schedule value sharing
// the unmodified entries of its receiver, rather than mutating in place, so
// a run can be inspected at any intermediate step without aliasing
// surprises.
type Schedule struct {
	sections map[string]domain.Section
}

// Empty returns a schedule with no sections.
func Empty() Schedule {
	return Schedule{sections: map[string]domain.Section{}}
}

// Section looks up a section by ID.
func (s Schedule) Section(id string) (domain.Section, bool) {
	sec, ok := s.sections[id]
	return sec, ok
}

// Sections returns every section in the schedule, sorted by ID so callers
// get a deterministic iteration order.
func (s Schedule) Sections() []domain.Section {
	out := make([]domain.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		out = append(out, sec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s Schedule) with(sec domain.Section) Schedule {
	next := make(map[string]domain.Section, len(s.sections)+1)
	for k, v := range s.sections {
		next[k] = v
	}
	next[sec.ID] = sec
	return Schedule{sections: next}
}

// WithNewSection adds a brand-new section to the schedule.
func (s Schedule) WithNewSection(sec domain.Section) Schedule {
	return s.with(sec)
}

// WithStudentRegistered enrolls studentID into sectionID.
func (s Schedule) WithStudentRegistered(sectionID, studentID string) Schedule {
	sec, ok := s.sections[sectionID]
	if !ok {
		return s
	}
	return s.with(sec.WithStudent(studentID))
}

// WithStudentRemoved removes studentID from sectionID's roster.
func (s Schedule) WithStudentRemoved(sectionID, studentID string) Schedule {
	sec, ok := s.sections[sectionID]
	if !ok {
		return s
	}
	return s.with(sec.WithoutStudent(studentID))
}

// WithCoTeacher attaches a co-teacher to sectionID.
func (s Schedule) WithCoTeacher(sectionID, teacherID string) Schedule {
	sec, ok := s.sections[sectionID]
	if !ok {
		return s
	}
	return s.with(sec.WithCoTeacher(teacherID))
}

// WithEnvironment promotes or demotes sectionID's environment.
func (s Schedule) WithEnvironment(sectionID string, env domain.Environment) Schedule {
	sec, ok := s.sections[sectionID]
	if !ok {
		return s
	}
	return s.with(sec.WithEnvironment(env))
}

// WithPrimaryTeacher assigns a primary teacher to a previously unfilled
// section (lunch and seeded-but-empty seminar sections).
func (s Schedule) WithPrimaryTeacher(sectionID, teacherID string) Schedule {
	sec, ok := s.sections[sectionID]
	if !ok {
		return s
	}
	return s.with(sec.WithPrimaryTeacher(teacherID))
}

// SectionsOfCourse returns every section of courseID, sorted by ID.
func (s Schedule) SectionsOfCourse(courseID string) []domain.Section {
	out := make([]domain.Section, 0)
	for _, sec := range s.sections {
		if sec.CourseID == courseID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TeacherSections returns every section where teacherID teaches, as
// primary or co-teacher.
func (s Schedule) TeacherSections(teacherID string) []domain.Section {
	out := make([]domain.Section, 0)
	for _, sec := range s.sections {
		if sec.PrimaryTeacherID == teacherID || sec.CoTeacherID == teacherID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StudentSections returns every section studentID is enrolled in.
func (s Schedule) StudentSections(studentID string) []domain.Section {
	out := make([]domain.Section, 0)
	for _, sec := range s.sections {
		if sec.HasStudent(studentID) {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TeacherPreps returns the distinct course IDs teacherID is PRIMARY teacher
// of. Co-teaching does not count toward a teacher's prep load.
func (s Schedule) TeacherPreps(teacherID string) map[string]bool {
	preps := map[string]bool{}
	for _, sec := range s.sections {
		if sec.PrimaryTeacherID == teacherID {
			preps[sec.CourseID] = true
		}
	}
	return preps
}

// TeacherFreePeriods returns the periods teacherID is not committed to,
// across any section they teach.
func (s Schedule) TeacherFreePeriods(teacherID string) []domain.Period {
	return domain.NonOverlappingWith(periodsOf(s.TeacherSections(teacherID)))
}

// StudentFreePeriods returns the periods studentID is not enrolled in
// anything during.
func (s Schedule) StudentFreePeriods(studentID string) []domain.Period {
	return domain.NonOverlappingWith(periodsOf(s.StudentSections(studentID)))
}

// TeacherSectionCount is the number of sections teacherID currently teaches
// (primary or co), used to pick the "busiest teacher first" candidate order.
func (s Schedule) TeacherSectionCount(teacherID string) int {
	return len(s.TeacherSections(teacherID))
}

func periodsOf(sections []domain.Section) []domain.Period {
	out := make([]domain.Period, len(sections))
	for i, sec := range sections {
		out[i] = sec.Period
	}
	return out
}
