package domain

// Default section-size bounds applied when a catalog row omits them.
const (
	DefaultMinSize = 20
	DefaultMaxSize = 30
)

// Sentinel course identifiers with no real endorsement behind them.
const (
	LunchCourseID       = ":lunch"
	SpedSeminarCourseID = ":sped-seminar"
)

// Course is a catalog offering: a required endorsement (empty for the
// sentinel courses) plus the section-size band it is taught in.
type Course struct {
	ID                  string
	Name                string
	RequiredEndorsement Endorsement
	MinSize             int
	MaxSize             int
}

// NewCourse builds a Course, applying the default size band.
func NewCourse(id, name string, endorsement Endorsement, minSize, maxSize int) Course {
	if minSize <= 0 {
		minSize = DefaultMinSize
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return Course{ID: id, Name: name, RequiredEndorsement: endorsement, MinSize: minSize, MaxSize: maxSize}
}

// Department derives the course's department from its required endorsement.
func (c Course) Department() Department {
	return DepartmentOf(c.RequiredEndorsement)
}

// LunchCourse is the sentinel course every student attaches a lunch section
// of; it requires no endorsement and no teacher.
func LunchCourse() Course {
	return Course{ID: LunchCourseID, Name: "Lunch", MinSize: 0, MaxSize: 360}
}

// SpedSeminarCourse is the sentinel separate-class seminar course offered
// once per half-block.
func SpedSeminarCourse() Course {
	return Course{ID: SpedSeminarCourseID, Name: "Sped Seminar", RequiredEndorsement: LBS1, MinSize: 0, MaxSize: 15}
}
