package models

import "time"

// Course is the persisted row form of a catalog offering.
type Course struct {
	ID                  string    `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	RequiredEndorsement string    `db:"required_endorsement" json:"requiredEndorsement"`
	MinSize             int       `db:"min_size" json:"minSize"`
	MaxSize             int       `db:"max_size" json:"maxSize"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

// Room is the persisted row form of a physical teaching space.
type Room struct {
	ID          string    `db:"id" json:"id"`
	Number      string    `db:"number" json:"number"`
	Type        string    `db:"type" json:"type"`
	MaxCapacity int       `db:"max_capacity" json:"maxCapacity"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// CourseFilter narrows CourseRepository.List.
type CourseFilter struct {
	Endorsement string
	Search      string
	Page        int
	PageSize    int
}
