// Package domain holds the value types of the master-schedule model:
// periods, teachers, students, courses, rooms, and sections. Entities are
// constructed with defaults and invariant checks baked in; nothing here
// talks to a database or the network.
package domain

// Period is one of the eight full daily blocks or the four alternating
// half-blocks that substitute for a pair of full blocks on A/B/C/D days.
type Period string

const (
	Period1 Period = "1st"
	Period2 Period = "2nd"
	Period3 Period = "3rd"
	Period4 Period = "4th"
	Period5 Period = "5th"
	Period6 Period = "6th"
	Period7 Period = "7th"
	Period8 Period = "8th"
	PeriodA Period = "A"
	PeriodB Period = "B"
	PeriodC Period = "C"
	PeriodD Period = "D"
)

// periodOrder fixes a total order over the enumeration, used wherever the
// spec calls for "the smallest/largest period" by a canonical order.
var periodOrder = []Period{
	Period1, Period2, Period3, Period4,
	Period5, Period6, Period7, Period8,
	PeriodA, PeriodB, PeriodC, PeriodD,
}

var periodIndex = func() map[Period]int {
	m := make(map[Period]int, len(periodOrder))
	for i, p := range periodOrder {
		m[p] = i
	}
	return m
}()

// AllPeriods returns the full enumeration in canonical order.
func AllPeriods() []Period {
	out := make([]Period, len(periodOrder))
	copy(out, periodOrder)
	return out
}

// IsValidPeriod reports whether p belongs to the enumeration.
func IsValidPeriod(p Period) bool {
	_, ok := periodIndex[p]
	return ok
}

// Index returns p's position in the canonical order, or -1 if p is unknown.
func (p Period) Index() int {
	if idx, ok := periodIndex[p]; ok {
		return idx
	}
	return -1
}

// IsHalfBlock reports whether p is one of the A/B/C/D alternating blocks.
func (p Period) IsHalfBlock() bool {
	switch p {
	case PeriodA, PeriodB, PeriodC, PeriodD:
		return true
	default:
		return false
	}
}

// IsFullBlock is the complement of IsHalfBlock within the enumeration.
func (p Period) IsFullBlock() bool {
	return IsValidPeriod(p) && !p.IsHalfBlock()
}

// overlapPairs is the hard-coded half/full-block overlap table. It is the
// only place that correspondence is configured.
var overlapPairs = map[Period]map[Period]bool{
	Period2: {PeriodA: true, PeriodB: true},
	Period6: {PeriodA: true, PeriodB: true},
	Period3: {PeriodC: true, PeriodD: true},
	Period7: {PeriodC: true, PeriodD: true},
}

func init() {
	// Make the table symmetric without hand-writing both directions.
	for full, halves := range overlapPairs {
		for half := range halves {
			if overlapPairs[half] == nil {
				overlapPairs[half] = map[Period]bool{}
			}
			overlapPairs[half][full] = true
		}
	}
}

// Overlaps is reflexive and symmetric, equal to equality except for the
// fixed cross table between full and half blocks.
func Overlaps(a, b Period) bool {
	if a == b {
		return true
	}
	return overlapPairs[a][b]
}

// NonOverlappingWith returns every period in the enumeration that does not
// overlap any period in busy. Used to derive a teacher's or student's free
// periods from the periods they are already committed to.
func NonOverlappingWith(busy []Period) []Period {
	free := make([]Period, 0, len(periodOrder))
	for _, candidate := range periodOrder {
		clash := false
		for _, b := range busy {
			if Overlaps(candidate, b) {
				clash = true
				break
			}
		}
		if !clash {
			free = append(free, candidate)
		}
	}
	return free
}

// HalfBlocks returns A, B, C, D in canonical order.
func HalfBlocks() []Period {
	return []Period{PeriodA, PeriodB, PeriodC, PeriodD}
}
