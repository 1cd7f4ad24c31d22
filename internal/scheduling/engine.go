package scheduling

import (
	"fmt"
	"sort"

	"github.com/sma-engine/masterschedule/internal/domain"
)

// RunOptions configures a single placement run.
type RunOptions struct {
	// ScheduleElectives opts into a second pass over elective demand after
	// required courses are placed. Off by default: a run schedules
	// required courses only.
	ScheduleElectives bool
}

// RunStats tallies how each ticket resolved, broken out by outcome so the
// caller can drive per-outcome metrics.
type RunStats struct {
	Outcomes map[string]int
}

func newRunStats() RunStats {
	return RunStats{Outcomes: map[string]int{}}
}

func (r RunStats) record(outcome string) {
	r.Outcomes[outcome]++
}

// MakeSchedule builds the starting schedule for a run: empty except for
// the seeded lunch and separate-class seminar sections.
func MakeSchedule(rooms []domain.Room) Schedule {
	return SeedLunchAndSeminar(Empty(), rooms)
}

// Run executes the placement engine over an already-seeded schedule,
// mutating nothing passed in (every intermediate state is a fresh
// Schedule value) and returning the final schedule plus outcome tallies.
func Run(sched Schedule, faculty Faculty, courses map[string]domain.Course, rooms []domain.Room, students []domain.Student, seed int64, opts RunOptions) (Schedule, RunStats) {
	coursesCopy := make(map[string]domain.Course, len(courses)+2)
	for k, v := range courses {
		coursesCopy[k] = v
	}
	if _, ok := coursesCopy[domain.LunchCourseID]; !ok {
		coursesCopy[domain.LunchCourseID] = domain.LunchCourse()
	}
	if _, ok := coursesCopy[domain.SpedSeminarCourseID]; !ok {
		coursesCopy[domain.SpedSeminarCourseID] = domain.SpedSeminarCourse()
	}

	studentPriority := make(map[string]int, len(students))
	for _, st := range students {
		studentPriority[st.ID] = st.Priority()
	}

	tickets := BuildTickets(students, coursesCopy)
	if opts.ScheduleElectives {
		tickets = append(tickets, BuildElectiveTickets(students, coursesCopy, len(tickets))...)
	}
	tickets = Prioritize(tickets, coursesCopy, studentPriority)

	stats := newRunStats()
	for i, t := range tickets {
		course, ok := coursesCopy[t.CourseID]
		if !ok {
			stats.record("drop")
			sched, _ = EnforceLunch(sched, t.StudentID)
			continue
		}
		var outcome string
		switch {
		case t.SeparateClass:
			sched, outcome = placeSeparateClass(sched, faculty, rooms, t.StudentID, course, seed, i)
		case t.Inclusion:
			sched, outcome = placeInclusion(sched, faculty, rooms, t.StudentID, course, seed, i)
		default:
			sched, outcome = placeGenEd(sched, faculty, rooms, t.StudentID, course, seed, i)
		}
		stats.record(outcome)
		// Lunch is enforced at the end of every placement attempt for the
		// student, not only successful ones: a dropped or demoted ticket
		// still leaves the student needing a lunch block.
		sched, _ = EnforceLunch(sched, t.StudentID)
	}
	// Students with no required courses and no seminar need build no
	// ticket at all and so never pass through the loop above; give them
	// a lunch attempt too.
	for _, st := range students {
		sched, _ = EnforceLunch(sched, st.ID)
	}
	return sched, stats
}

func placeGenEd(sched Schedule, faculty Faculty, rooms []domain.Room, studentID string, course domain.Course, seed int64, step int) (Schedule, string) {
	pool := candidatesWithSpace(sched.SectionsOfCourse(course.ID), func(s domain.Section) bool {
		return s.Environment != domain.EnvSeparateClass
	})
	if target, ok := bestAttach(pool, sched.StudentFreePeriods(studentID)); ok {
		return sched.WithStudentRegistered(target.ID, studentID), "attach"
	}

	free := sched.StudentFreePeriods(studentID)
	if len(free) == 0 {
		return sched, "drop"
	}
	period := chooseDepartmentPeriod(course.Department(), free, seed, step)
	teacherID, ok := pickBusiestEligible(sched, faculty, func(id string) bool {
		return TeacherCanTakeGenEd(sched, faculty, id, course, period)
	})
	if !ok {
		return sched, "drop"
	}
	room := DefaultRoomForCourse(course, rooms)
	maxSize := clampToRoom(course.MaxSize, room, rooms)
	sectionID := newSectionID(course.ID, period, step)
	sec := domain.NewSection(sectionID, course.ID, period, room, teacherID, domain.EnvGenEd, maxSize)
	sched = sched.WithNewSection(sec)
	sched = sched.WithStudentRegistered(sectionID, studentID)
	return sched, "create"
}

func placeInclusion(sched Schedule, faculty Faculty, rooms []domain.Room, studentID string, course domain.Course, seed int64, step int) (Schedule, string) {
	pool := candidatesWithSpace(sched.SectionsOfCourse(course.ID), func(s domain.Section) bool {
		return s.Environment == domain.EnvInclusion
	})
	if target, ok := bestAttach(pool, sched.StudentFreePeriods(studentID)); ok {
		return sched.WithStudentRegistered(target.ID, studentID), "attach"
	}

	after, outcome := placeGenEd(sched, faculty, rooms, studentID, course, seed, step)
	if outcome == "drop" {
		return sched, "drop"
	}
	sectionID, found := findStudentSection(after, studentID, course.ID)
	if !found {
		return sched, "drop"
	}
	promoted, ok := AssignCoTeacher(after, faculty, sectionID)
	if !ok {
		return after.WithStudentRemoved(sectionID, studentID), "demoted"
	}
	return promoted.WithEnvironment(sectionID, domain.EnvInclusion), "create-promoted"
}

func placeSeparateClass(sched Schedule, faculty Faculty, rooms []domain.Room, studentID string, course domain.Course, seed int64, step int) (Schedule, string) {
	free := sched.StudentFreePeriods(studentID)
	freeSet := make(map[domain.Period]bool, len(free))
	for _, p := range free {
		freeSet[p] = true
	}

	candidates := make([]domain.Section, 0)
	for _, sec := range sched.SectionsOfCourse(course.ID) {
		if sec.Environment == domain.EnvSeparateClass && freeSet[sec.Period] && sec.HasSpace() {
			candidates = append(candidates, sec)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Period.Index() != candidates[j].Period.Index() {
			return candidates[i].Period.Index() < candidates[j].Period.Index()
		}
		if candidates[i].Size() != candidates[j].Size() {
			return candidates[i].Size() < candidates[j].Size()
		}
		return candidates[i].ID < candidates[j].ID
	})
	for _, c := range candidates {
		working := sched
		if c.PrimaryTeacherID == "" {
			w2, ok := AssignPrimarySped(working, faculty, c.ID)
			if !ok {
				continue
			}
			working = w2
		}
		return working.WithStudentRegistered(c.ID, studentID), "attach"
	}

	if len(free) == 0 {
		return sched, "drop"
	}
	period := chooseDepartmentPeriod(course.Department(), free, seed, step)
	teacherID, ok := pickBusiestEligible(sched, faculty, func(id string) bool {
		return TeacherCanTakeSped(sched, faculty, id, period)
	})
	if !ok {
		return sched, "drop"
	}
	room := DefaultRoomForCourse(course, rooms)
	maxSize := clampToRoom(course.MaxSize, room, rooms)
	sectionID := newSectionID(course.ID, period, step)
	sec := domain.NewSection(sectionID, course.ID, period, room, teacherID, domain.EnvSeparateClass, maxSize)
	sched = sched.WithNewSection(sec)
	sched = sched.WithStudentRegistered(sectionID, studentID)
	return sched, "create"
}

func candidatesWithSpace(sections []domain.Section, include func(domain.Section) bool) []domain.Section {
	out := make([]domain.Section, 0, len(sections))
	for _, s := range sections {
		if include(s) && s.HasSpace() {
			out = append(out, s)
		}
	}
	return out
}

// bestAttach picks the least-loaded section, at the smallest free period
// any candidate section meets during, that the student can attach to.
func bestAttach(pool []domain.Section, free []domain.Period) (domain.Section, bool) {
	freeSet := make(map[domain.Period]bool, len(free))
	for _, p := range free {
		freeSet[p] = true
	}
	candidates := make([]domain.Section, 0, len(pool))
	for _, s := range pool {
		if freeSet[s.Period] {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return domain.Section{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Period.Index() != candidates[j].Period.Index() {
			return candidates[i].Period.Index() < candidates[j].Period.Index()
		}
		if candidates[i].Size() != candidates[j].Size() {
			return candidates[i].Size() < candidates[j].Size()
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0], true
}

func findStudentSection(sched Schedule, studentID, courseID string) (string, bool) {
	for _, sec := range sched.SectionsOfCourse(courseID) {
		if sec.HasStudent(studentID) {
			return sec.ID, true
		}
	}
	return "", false
}

// chooseDepartmentPeriod applies the department-specific new-section period
// rule: Math and World Language prefer the largest free period, Science
// and Art prefer the smallest, everything else draws from the step's PRNG.
func chooseDepartmentPeriod(dept domain.Department, free []domain.Period, seed int64, step int) domain.Period {
	switch dept {
	case domain.DeptMath, domain.DeptWorldLanguage:
		return extreme(free, true)
	case domain.DeptScience, domain.DeptArt:
		return extreme(free, false)
	default:
		r := StepRand(seed, step)
		return free[r.Intn(len(free))]
	}
}

func extreme(periods []domain.Period, largest bool) domain.Period {
	best := periods[0]
	for _, p := range periods[1:] {
		if largest && p.Index() > best.Index() {
			best = p
		}
		if !largest && p.Index() < best.Index() {
			best = p
		}
	}
	return best
}

func clampToRoom(courseMax int, roomNumber string, rooms []domain.Room) int {
	for _, r := range rooms {
		if r.Number == roomNumber {
			if r.MaxCapacity < courseMax {
				return r.MaxCapacity
			}
			return courseMax
		}
	}
	return courseMax
}

func newSectionID(courseID string, period domain.Period, step int) string {
	return fmt.Sprintf("%s-%s-%d", courseID, period, step)
}
