package scheduling

import "github.com/sma-engine/masterschedule/internal/domain"

// Faculty indexes teachers by ID for constraint lookups.
type Faculty map[string]domain.Teacher

// SectionHasSpace reports whether another student fits in sec.
func SectionHasSpace(sec domain.Section) bool {
	return sec.HasSpace()
}

// TeacherCanTakeGenEd reports whether teacherID may be assigned as primary
// teacher of a new general-education section of course at period: they
// must hold the course's required endorsement, have room under their
// section cap, be free at period, and not already teach course as a
// distinct prep beyond their prep cap.
func TeacherCanTakeGenEd(sched Schedule, faculty Faculty, teacherID string, course domain.Course, period domain.Period) bool {
	t, ok := faculty[teacherID]
	if !ok {
		return false
	}
	if !t.HasCert(course.RequiredEndorsement) {
		return false
	}
	if sched.TeacherSectionCount(teacherID) >= t.MaxSections {
		return false
	}
	free := false
	for _, p := range sched.TeacherFreePeriods(teacherID) {
		if p == period {
			free = true
			break
		}
	}
	if !free {
		return false
	}
	preps := sched.TeacherPreps(teacherID)
	if !preps[course.ID] && len(preps) >= t.MaxPreps {
		return false
	}
	return true
}

// TeacherCanTakeSped reports whether teacherID may be assigned as primary
// teacher of a separate-class section at period: LBS1 certification,
// section-cap and period-free checks apply, but co-teacher load never
// counts against the LBS1 prep cap, so there is no prep-cap check here at all.
func TeacherCanTakeSped(sched Schedule, faculty Faculty, teacherID string, period domain.Period) bool {
	t, ok := faculty[teacherID]
	if !ok {
		return false
	}
	if !t.HasLBS1() {
		return false
	}
	if sched.TeacherSectionCount(teacherID) >= t.MaxSections {
		return false
	}
	for _, p := range sched.TeacherFreePeriods(teacherID) {
		if p == period {
			return true
		}
	}
	return false
}
