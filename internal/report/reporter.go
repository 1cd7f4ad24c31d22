// Package report computes the post-run summary: which required courses
// (and the sped seminar) students still lack, bucketed by how many they're
// missing, plus which students never got a lunch assignment. None of this
// is treated as an error — a run that leaves demand unmet still succeeds;
// the summary is how a registrar finds out what to fix by hand.
package report

import (
	"sort"

	"github.com/sma-engine/masterschedule/internal/domain"
	"github.com/sma-engine/masterschedule/internal/scheduling"
)

// Summary is the reporter's output for a single run.
type Summary struct {
	MissingRequirements map[string][]string `json:"missingRequirements"`
	BucketCounts        map[string]int      `json:"bucketCounts"`
	// LunchAnomalies maps student ID to lunch-section count, for every
	// student whose count is != 1. The reporter counts this directly off
	// the schedule rather than trusting the engine never produced a
	// count other than 0 or 1.
	LunchAnomalies map[string]int `json:"lunchAnomalies"`
}

// bucketLabel classifies a student's missing-course count into the
// reporter's fixed buckets.
func bucketLabel(n int) string {
	switch {
	case n == 0:
		return "0"
	case n == 1:
		return "1"
	case n == 2:
		return "2"
	case n == 3:
		return "3"
	default:
		return ">3"
	}
}

// Generate walks the final schedule against the original student roster and
// produces the missing-requirements and lunch-anomaly summary.
func Generate(sched scheduling.Schedule, students []domain.Student) Summary {
	summary := Summary{
		MissingRequirements: map[string][]string{},
		BucketCounts:        map[string]int{"0": 0, "1": 0, "2": 0, "3": 0, ">3": 0},
		LunchAnomalies:      map[string]int{},
	}

	for _, st := range students {
		enrolled := map[string]bool{}
		lunchCount := 0
		for _, sec := range sched.StudentSections(st.ID) {
			enrolled[sec.CourseID] = true
			if sec.CourseID == domain.LunchCourseID {
				lunchCount++
			}
		}

		missing := make([]string, 0)
		for _, courseID := range st.RequiredCourseIDs {
			if !enrolled[courseID] {
				missing = append(missing, courseID)
			}
		}
		if st.NeedsSpedSeminar && !enrolled[domain.SpedSeminarCourseID] {
			missing = append(missing, domain.SpedSeminarCourseID)
		}
		sort.Strings(missing)

		if len(missing) > 0 {
			summary.MissingRequirements[st.ID] = missing
		}
		summary.BucketCounts[bucketLabel(len(missing))]++

		if lunchCount != 1 {
			summary.LunchAnomalies[st.ID] = lunchCount
		}
	}
	return summary
}
