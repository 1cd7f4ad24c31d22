package models

import "time"

// Teacher is the persisted row form of a faculty member. Certifications
// are stored as a comma-separated endorsement list; the scheduling engine
// works against the in-memory domain.Teacher shape instead.
type Teacher struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Certifications string    `db:"certifications" json:"certifications"`
	MaxSections    int       `db:"max_sections" json:"maxSections"`
	MaxPreps       int       `db:"max_preps" json:"maxPreps"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// TeacherFilter narrows TeacherRepository.List.
type TeacherFilter struct {
	Active    *bool
	Certified string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}
