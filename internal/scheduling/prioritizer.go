package scheduling

import (
	"sort"

	"github.com/sma-engine/masterschedule/internal/domain"
)

// Ticket is a single unit of course demand: one student's need for one
// course. SeqIndex preserves the position the ticket was built at, which
// is the stable tie-break of last resort.
type Ticket struct {
	StudentID     string
	CourseID      string
	Elective      bool
	Inclusion     bool
	SeparateClass bool
	SeqIndex      int
	priority      int
}

// BuildTickets expands each student's required-course load (and, for
// students tagged NeedsSpedSeminar, a synthetic seminar demand) into
// tickets, in student input order. Electives are not expanded: per the
// run's default configuration only required courses are scheduled.
func BuildTickets(students []domain.Student, courses map[string]domain.Course) []Ticket {
	tickets := make([]Ticket, 0, len(students)*6)
	seq := 0
	for _, st := range students {
		for _, courseID := range st.RequiredCourseIDs {
			dept := domain.DeptOther
			if c, ok := courses[courseID]; ok {
				dept = c.Department()
			}
			tickets = append(tickets, Ticket{
				StudentID:     st.ID,
				CourseID:      courseID,
				Inclusion:     st.IsInclusion(dept),
				SeparateClass: st.IsSeparateClass(dept),
				SeqIndex:      seq,
			})
			seq++
		}
		if st.NeedsSpedSeminar {
			tickets = append(tickets, Ticket{
				StudentID:     st.ID,
				CourseID:      domain.SpedSeminarCourseID,
				SeparateClass: true,
				SeqIndex:      seq,
			})
			seq++
		}
	}
	return tickets
}

// BuildElectiveTickets expands each student's elective load into tickets,
// for runs that opt into elective scheduling.
func BuildElectiveTickets(students []domain.Student, courses map[string]domain.Course, startSeq int) []Ticket {
	tickets := make([]Ticket, 0, len(students)*2)
	seq := startSeq
	for _, st := range students {
		for _, courseID := range st.ElectiveCourseIDs {
			dept := domain.DeptOther
			if c, ok := courses[courseID]; ok {
				dept = c.Department()
			}
			tickets = append(tickets, Ticket{
				StudentID:     st.ID,
				CourseID:      courseID,
				Elective:      true,
				Inclusion:     st.IsInclusion(dept),
				SeparateClass: st.IsSeparateClass(dept),
				SeqIndex:      seq,
			})
			seq++
		}
	}
	return tickets
}

// Prioritize orders tickets by the placement priority formula:
//
//  1. estimate(c) = 1 + floor(count(tickets for c) / course.MaxSize)
//  2. base(c) = max(estimate) - estimate(c)  — scarcer courses sort first
//  3. x := base(course); inclusion doubles (x+2); separate-class triples
//     (x+2); elective subtracts 1. These are applied in sequence, not as
//     mutually exclusive cases.
//
// Ties break on student priority (inclusion/separate-class tag count),
// then on the ticket's original input order. Tied tickets therefore keep
// the order in which their students were supplied, so reordering the
// input students can change which tied ticket is placed first.
func Prioritize(tickets []Ticket, courses map[string]domain.Course, studentPriority map[string]int) []Ticket {
	estimate := map[string]int{}
	counts := map[string]int{}
	for _, t := range tickets {
		counts[t.CourseID]++
	}
	maxEstimate := 0
	for courseID, n := range counts {
		cap := domain.DefaultMaxSize
		if c, ok := courses[courseID]; ok && c.MaxSize > 0 {
			cap = c.MaxSize
		}
		e := 1 + n/cap
		estimate[courseID] = e
		if e > maxEstimate {
			maxEstimate = e
		}
	}

	out := make([]Ticket, len(tickets))
	copy(out, tickets)
	for i := range out {
		t := &out[i]
		x := maxEstimate - estimate[t.CourseID]
		if t.Inclusion {
			x = (x + 2) * 2
		}
		if t.SeparateClass {
			x = (x + 2) * 3
		}
		if t.Elective {
			x = x - 1
		}
		t.priority = x
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority > out[j].priority
		}
		pi, pj := studentPriority[out[i].StudentID], studentPriority[out[j].StudentID]
		if pi != pj {
			return pi > pj
		}
		return out[i].SeqIndex < out[j].SeqIndex
	})
	return out
}
