package report_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sma-engine/masterschedule/internal/domain"
	"github.com/sma-engine/masterschedule/internal/report"
	"github.com/sma-engine/masterschedule/internal/scheduling"
)

func TestGenerateReportsMissingRequiredCourse(t *testing.T) {
	sched := scheduling.Empty()
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", []string{"math-1", "english-1"}, nil, nil, nil, false),
	}
	sched = sched.WithNewSection(domain.NewSection("math-1-1st-0", "math-1", domain.Period1, "100", "t-math", domain.EnvGenEd, 30))
	sched = sched.WithStudentRegistered("math-1-1st-0", "s1")

	summary := report.Generate(sched, students)

	assert.Equal(t, []string{"english-1"}, summary.MissingRequirements["s1"])
	assert.Equal(t, 1, summary.BucketCounts["1"])
	assert.Equal(t, 0, summary.BucketCounts["0"])
}

func TestGenerateReportsLunchAnomalyWhenMissing(t *testing.T) {
	sched := scheduling.Empty()
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", nil, nil, nil, nil, false),
	}
	summary := report.Generate(sched, students)
	assert.Equal(t, 0, summary.LunchAnomalies["s1"])
	assert.Contains(t, summary.LunchAnomalies, "s1")
}

func TestGenerateReportsLunchAnomalyWhenDoubled(t *testing.T) {
	sched := scheduling.Empty()
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", nil, nil, nil, nil, false),
	}
	sched = sched.WithNewSection(domain.NewSection("lunch-A", domain.LunchCourseID, domain.PeriodA, "Caf", "", domain.EnvGenEd, 360))
	sched = sched.WithNewSection(domain.NewSection("lunch-B", domain.LunchCourseID, domain.PeriodB, "Caf", "", domain.EnvGenEd, 360))
	sched = sched.WithStudentRegistered("lunch-A", "s1")
	sched = sched.WithStudentRegistered("lunch-B", "s1")

	summary := report.Generate(sched, students)
	assert.Equal(t, 2, summary.LunchAnomalies["s1"])
}

func TestGenerateOmitsStudentsWithExactlyOneLunch(t *testing.T) {
	sched := scheduling.Empty()
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", nil, nil, nil, nil, false),
	}
	sched = sched.WithNewSection(domain.NewSection("lunch-A", domain.LunchCourseID, domain.PeriodA, "Caf", "", domain.EnvGenEd, 360))
	sched = sched.WithStudentRegistered("lunch-A", "s1")

	summary := report.Generate(sched, students)
	assert.NotContains(t, summary.LunchAnomalies, "s1")
}

func TestGenerateReportsSpedSeminarAsMissing(t *testing.T) {
	sched := scheduling.Empty()
	students := []domain.Student{
		domain.NewStudent("s1", "A", "9", nil, nil, nil, nil, true),
	}
	summary := report.Generate(sched, students)
	assert.Equal(t, []string{domain.SpedSeminarCourseID}, summary.MissingRequirements["s1"])
}
