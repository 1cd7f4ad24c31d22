package domain

// Student is a single enrollee with a required/elective course load and the
// department-tagged IEP sets that drive inclusion and separate-class
// placement.
type Student struct {
	ID                string
	Name              string
	Grade             string
	RequiredCourseIDs []string
	ElectiveCourseIDs []string
	Inclusion         map[Department]bool
	SeparateClass     map[Department]bool
	NeedsSpedSeminar  bool
}

// NewStudent builds a Student from raw department-tag lists. A
// ":sped-seminar" entry in separateClassTags is not a department; it is
// lifted into NeedsSpedSeminar instead, since the sentinel seminar course
// has no endorsement-derived department of its own.
func NewStudent(id, name, grade string, required, elective []string, inclusionTags, separateClassTags []Department, needsSpedSeminar bool) Student {
	inclusion := make(map[Department]bool, len(inclusionTags))
	for _, d := range inclusionTags {
		inclusion[d] = true
	}
	separate := make(map[Department]bool, len(separateClassTags))
	for _, d := range separateClassTags {
		if d == Department(SpedSeminarCourseID) {
			needsSpedSeminar = true
			continue
		}
		separate[d] = true
	}
	return Student{
		ID:                id,
		Name:              name,
		Grade:             grade,
		RequiredCourseIDs: append([]string(nil), required...),
		ElectiveCourseIDs: append([]string(nil), elective...),
		Inclusion:         inclusion,
		SeparateClass:     separate,
		NeedsSpedSeminar:  needsSpedSeminar,
	}
}

// IsInclusion reports whether the student carries an inclusion tag for d.
func (s Student) IsInclusion(d Department) bool {
	return s.Inclusion[d]
}

// IsSeparateClass reports whether the student carries a separate-class tag
// for d.
func (s Student) IsSeparateClass(d Department) bool {
	return s.SeparateClass[d]
}

// Priority is the student-level tie-break value: one point per inclusion
// tag, five points per separate-class tag.
func (s Student) Priority() int {
	return len(s.Inclusion) + 5*len(s.SeparateClass)
}
