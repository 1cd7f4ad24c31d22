package scheduling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sma-engine/masterschedule/internal/domain"
	"github.com/sma-engine/masterschedule/internal/scheduling"
)

func basicRooms() []domain.Room {
	return []domain.Room{
		domain.NewRoom("100", domain.RoomStandard, 30),
		domain.NewRoom("101", domain.RoomStandard, 30),
		domain.NewRoom("Lab1", domain.RoomLab, 24),
		domain.NewRoom("Gym", domain.RoomGym, 60),
		domain.NewRoom("Sped1", domain.RoomSped, 15),
		domain.NewRoom("Caf", domain.RoomCafeteria, 360),
	}
}

func basicFaculty() scheduling.Faculty {
	return scheduling.Faculty{
		"t-math":    domain.NewTeacher("t-math", "Ms. Math", []domain.Endorsement{"Math"}, 6, 2),
		"t-english": domain.NewTeacher("t-english", "Mr. English", []domain.Endorsement{"English"}, 6, 2),
		"t-sped":    domain.NewTeacher("t-sped", "Ms. Sped", []domain.Endorsement{domain.LBS1}, 6, 2),
	}
}

func basicCourses() map[string]domain.Course {
	return map[string]domain.Course{
		"math-1":    domain.NewCourse("math-1", "Algebra I", "Math", 5, 6),
		"english-1": domain.NewCourse("english-1", "English I", "English", 5, 6),
	}
}

func TestRunAttachesStudentsWithinCourseCapacity(t *testing.T) {
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", []string{"math-1"}, nil, nil, nil, false),
		domain.NewStudent("s2", "B", "9", []string{"math-1"}, nil, nil, nil, false),
	}
	sched := scheduling.MakeSchedule(basicRooms())
	sched, stats := scheduling.Run(sched, basicFaculty(), basicCourses(), basicRooms(), students, 42, scheduling.RunOptions{})

	assert.Equal(t, 2, stats.Outcomes["create"]+stats.Outcomes["attach"])
	sections := sched.SectionsOfCourse("math-1")
	require.Len(t, sections, 1)
	assert.Len(t, sections[0].Roster(), 2)
}

func TestRunNeverExceedsTeacherSectionCap(t *testing.T) {
	faculty := scheduling.Faculty{
		"t-math": domain.NewTeacher("t-math", "Ms. Math", []domain.Endorsement{"Math"}, 1, 2),
	}
	courses := map[string]domain.Course{
		"math-1": domain.NewCourse("math-1", "Algebra I", "Math", 1, 1),
	}
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", []string{"math-1"}, nil, nil, nil, false),
		domain.NewStudent("s2", "B", "9", []string{"math-1"}, nil, nil, nil, false),
	}
	sched := scheduling.MakeSchedule(basicRooms())
	sched, _ = scheduling.Run(sched, faculty, courses, basicRooms(), students, 7, scheduling.RunOptions{})

	assert.LessOrEqual(t, sched.TeacherSectionCount("t-math"), 1)
}

func TestRunNeverDoubleBooksAStudentAcrossOverlappingPeriods(t *testing.T) {
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", []string{"math-1", "english-1"}, nil, nil, nil, false),
	}
	sched := scheduling.MakeSchedule(basicRooms())
	sched, _ = scheduling.Run(sched, basicFaculty(), basicCourses(), basicRooms(), students, 5, scheduling.RunOptions{})

	var periods []domain.Period
	for _, sec := range sched.StudentSections("s1") {
		periods = append(periods, sec.Period)
	}
	for i := range periods {
		for j := range periods {
			if i == j {
				continue
			}
			assert.False(t, domain.Overlaps(periods[i], periods[j]), "student double-booked in overlapping periods %v and %v", periods[i], periods[j])
		}
	}
}

func TestRunIsDeterministicForTheSameSeed(t *testing.T) {
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", []string{"math-1", "english-1"}, nil, nil, nil, false),
		domain.NewStudent("s2", "B", "9", []string{"math-1"}, nil, []domain.Department{domain.DeptMath}, nil, false),
		domain.NewStudent("s3", "C", "9", []string{"english-1"}, nil, nil, []domain.Department{domain.DeptEnglish}, false),
	}
	run := func() scheduling.Schedule {
		sched := scheduling.MakeSchedule(basicRooms())
		sched, _ = scheduling.Run(sched, basicFaculty(), basicCourses(), basicRooms(), students, 99, scheduling.RunOptions{})
		return sched
	}
	a, b := run(), run()
	require.Equal(t, len(a.Sections()), len(b.Sections()))
	for i, secA := range a.Sections() {
		secB := b.Sections()[i]
		assert.Equal(t, secA.ID, secB.ID)
		assert.Equal(t, secA.Period, secB.Period)
		assert.Equal(t, secA.Roster(), secB.Roster())
		assert.Equal(t, secA.PrimaryTeacherID, secB.PrimaryTeacherID)
	}
}

func TestInclusionStudentGetsCoTeacherOnPromotedSection(t *testing.T) {
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", []string{"math-1"}, nil, []domain.Department{domain.DeptMath}, nil, false),
	}
	faculty := basicFaculty()
	sched := scheduling.MakeSchedule(basicRooms())
	sched, stats := scheduling.Run(sched, faculty, basicCourses(), basicRooms(), students, 3, scheduling.RunOptions{})

	require.Equal(t, 1, stats.Outcomes["create-promoted"])
	sections := sched.SectionsOfCourse("math-1")
	require.Len(t, sections, 1)
	assert.Equal(t, domain.EnvInclusion, sections[0].Environment)
	assert.Equal(t, "t-sped", sections[0].CoTeacherID)
}

func TestInclusionDemotesWhenNoCoTeacherAvailable(t *testing.T) {
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", []string{"math-1"}, nil, []domain.Department{domain.DeptMath}, nil, false),
	}
	faculty := scheduling.Faculty{
		"t-math": domain.NewTeacher("t-math", "Ms. Math", []domain.Endorsement{"Math"}, 6, 2),
	}
	sched := scheduling.MakeSchedule(basicRooms())
	sched, stats := scheduling.Run(sched, faculty, basicCourses(), basicRooms(), students, 3, scheduling.RunOptions{})

	assert.Equal(t, 1, stats.Outcomes["demoted"])
	for _, sec := range sched.SectionsOfCourse("math-1") {
		assert.False(t, sec.HasStudent("s1"))
	}
}

func TestSeparateClassStudentLandsInSeededSeminarSection(t *testing.T) {
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", nil, nil, nil, nil, true),
	}
	sched := scheduling.MakeSchedule(basicRooms())
	sched, stats := scheduling.Run(sched, basicFaculty(), basicCourses(), basicRooms(), students, 11, scheduling.RunOptions{})

	assert.Equal(t, 1, stats.Outcomes["attach"])
	found := false
	for _, sec := range sched.SectionsOfCourse(domain.SpedSeminarCourseID) {
		if sec.HasStudent("s1") {
			found = true
			assert.Equal(t, "t-sped", sec.PrimaryTeacherID)
		}
	}
	assert.True(t, found)
}

func TestEveryPlacedStudentEndsUpWithLunch(t *testing.T) {
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", []string{"math-1"}, nil, nil, nil, false),
	}
	sched := scheduling.MakeSchedule(basicRooms())
	sched, _ = scheduling.Run(sched, basicFaculty(), basicCourses(), basicRooms(), students, 1, scheduling.RunOptions{})

	hasLunch := false
	for _, sec := range sched.StudentSections("s1") {
		if sec.CourseID == domain.LunchCourseID {
			hasLunch = true
		}
	}
	assert.True(t, hasLunch)
}

func TestStudentWithUnplaceableCourseStillGetsLunch(t *testing.T) {
	faculty := scheduling.Faculty{
		"t-math": domain.NewTeacher("t-math", "Ms. Math", []domain.Endorsement{"Math"}, 6, 2),
	}
	courses := map[string]domain.Course{
		"art-1": domain.NewCourse("art-1", "Studio Art", "Art", 5, 6),
	}
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", []string{"art-1"}, nil, nil, nil, false),
	}
	sched := scheduling.MakeSchedule(basicRooms())
	sched, stats := scheduling.Run(sched, faculty, courses, basicRooms(), students, 3, scheduling.RunOptions{})

	assert.Equal(t, 1, stats.Outcomes["drop"])
	assert.Empty(t, sched.SectionsOfCourse("art-1"))

	hasLunch := false
	for _, sec := range sched.StudentSections("s1") {
		if sec.CourseID == domain.LunchCourseID {
			hasLunch = true
		}
	}
	assert.True(t, hasLunch, "student whose only course could not be placed must still receive a lunch block")
}

func TestStudentWithNoTicketsStillGetsLunch(t *testing.T) {
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", nil, nil, nil, nil, false),
	}
	sched := scheduling.MakeSchedule(basicRooms())
	sched, _ = scheduling.Run(sched, basicFaculty(), basicCourses(), basicRooms(), students, 4, scheduling.RunOptions{})

	hasLunch := false
	for _, sec := range sched.StudentSections("s1") {
		if sec.CourseID == domain.LunchCourseID {
			hasLunch = true
		}
	}
	assert.True(t, hasLunch, "student with no required courses must still receive a lunch block")
}
