package models

import "time"

// Student is the persisted row form of an enrollee. Required/elective
// course lists and IEP department tags are stored as comma-separated text;
// the import layer (internal/dto) normalizes and splits them.
type Student struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Grade             string    `db:"grade" json:"grade"`
	RequiredCourses   string    `db:"required_courses" json:"requiredCourses"`
	ElectiveCourses   string    `db:"elective_courses" json:"electiveCourses"`
	InclusionTags     string    `db:"inclusion_tags" json:"inclusionTags"`
	SeparateClassTags string    `db:"separate_class_tags" json:"separateClassTags"`
	NeedsSpedSeminar  bool      `db:"needs_sped_seminar" json:"needsSpedSeminar"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// StudentFilter narrows StudentRepository.List.
type StudentFilter struct {
	Grade     string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}
