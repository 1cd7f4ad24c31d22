package scheduling

import (
	"fmt"
	"sort"

	"github.com/sma-engine/masterschedule/internal/domain"
)

// SeedLunchAndSeminar creates the four lunch sections and four separate-
// class seminar sections, one of each per half-block, before any student
// demand is placed. Neither is given a primary teacher at seed time: lunch
// never needs one, and a seminar section is staffed lazily the first time
// a separate-class ticket lands on it.
func SeedLunchAndSeminar(sched Schedule, rooms []domain.Room) Schedule {
	lunchRoom := defaultRoomOfType(rooms, domain.RoomCafeteria)
	spedRoom := defaultRoomOfType(rooms, domain.RoomSped)
	lunch := domain.LunchCourse()
	seminar := domain.SpedSeminarCourse()
	for _, half := range domain.HalfBlocks() {
		lunchSec := domain.NewSection(fmt.Sprintf("lunch-%s", half), lunch.ID, half, lunchRoom, "", domain.EnvGenEd, lunch.MaxSize)
		sched = sched.WithNewSection(lunchSec)
		seminarSec := domain.NewSection(fmt.Sprintf("seminar-%s", half), seminar.ID, half, spedRoom, "", domain.EnvSeparateClass, seminar.MaxSize)
		sched = sched.WithNewSection(seminarSec)
	}
	return sched
}

func defaultRoomOfType(rooms []domain.Room, t domain.RoomType) string {
	candidates := make([]domain.Room, 0)
	for _, r := range rooms {
		if r.Type == t {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Number < candidates[j].Number })
	return candidates[0].Number
}

// DefaultRoomForCourse picks the canonical default room for a course's
// required space: the lexically-first room of the department's room type.
func DefaultRoomForCourse(course domain.Course, rooms []domain.Room) string {
	return defaultRoomOfType(rooms, domain.RoomTypeForDepartment(course.Department()))
}

// AssignCoTeacher finds the busiest eligible LBS1 teacher free at
// sectionID's period and attaches them as co-teacher. It is idempotent:
// calling it on a section that already has a co-teacher is a no-op success.
func AssignCoTeacher(sched Schedule, faculty Faculty, sectionID string) (Schedule, bool) {
	sec, ok := sched.Section(sectionID)
	if !ok {
		return sched, false
	}
	if sec.CoTeacherID != "" {
		return sched, true
	}
	candidate, ok := pickBusiestEligible(sched, faculty, func(id string) bool {
		return TeacherCanTakeSped(sched, faculty, id, sec.Period)
	})
	if !ok {
		return sched, false
	}
	return sched.WithCoTeacher(sectionID, candidate), true
}

// AssignPrimarySped finds the busiest eligible LBS1 teacher free at
// sectionID's period and assigns them as primary, for seeded seminar
// sections (or newly created separate-class sections) awaiting staffing.
func AssignPrimarySped(sched Schedule, faculty Faculty, sectionID string) (Schedule, bool) {
	sec, ok := sched.Section(sectionID)
	if !ok {
		return sched, false
	}
	if sec.PrimaryTeacherID != "" {
		return sched, true
	}
	candidate, ok := pickBusiestEligible(sched, faculty, func(id string) bool {
		return TeacherCanTakeSped(sched, faculty, id, sec.Period)
	})
	if !ok {
		return sched, false
	}
	return sched.WithPrimaryTeacher(sectionID, candidate), true
}

// pickBusiestEligible returns the teacher with the most existing sections
// (ties broken by ID) satisfying eligible, so that load concentrates on
// teachers already committed rather than spreading thin across faculty.
func pickBusiestEligible(sched Schedule, faculty Faculty, eligible func(string) bool) (string, bool) {
	ids := make([]string, 0, len(faculty))
	for id := range faculty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := sched.TeacherSectionCount(ids[i]), sched.TeacherSectionCount(ids[j])
		if ci != cj {
			return ci > cj
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		if eligible(id) {
			return id, true
		}
	}
	return "", false
}

// EnforceLunch ensures studentID holds exactly one lunch section, called
// after every placement attempt (including dropped ones) and once more for
// every student after the ticket loop. If the student already has a lunch
// section it is a no-op success; otherwise it attaches the student to the
// least-loaded lunch section among their free half-blocks. Failure (no
// half-block free with space) is a lunch anomaly, not an error, surfaced
// later by the reporter.
func EnforceLunch(sched Schedule, studentID string) (Schedule, bool) {
	for _, sec := range sched.StudentSections(studentID) {
		if sec.CourseID == domain.LunchCourseID {
			return sched, true
		}
	}
	free := sched.StudentFreePeriods(studentID)
	freeSet := map[domain.Period]bool{}
	for _, p := range free {
		freeSet[p] = true
	}
	lunchSections := sched.SectionsOfCourse(domain.LunchCourseID)
	candidates := make([]domain.Section, 0, len(lunchSections))
	for _, sec := range lunchSections {
		if freeSet[sec.Period] && SectionHasSpace(sec) {
			candidates = append(candidates, sec)
		}
	}
	if len(candidates) == 0 {
		return sched, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Size() != candidates[j].Size() {
			return candidates[i].Size() < candidates[j].Size()
		}
		return candidates[i].ID < candidates[j].ID
	})
	chosen := candidates[0]
	return sched.WithStudentRegistered(chosen.ID, studentID), true
}
