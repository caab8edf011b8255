package models

import "time"

// Course represents a taught course with its weekly hour contract.
type Course struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	HoursPerWeek int       `db:"hours_per_week" json:"hours_per_week"`
	LectureHours int       `db:"lecture_hours" json:"lecture_hours"`
	SeminarHours int       `db:"seminar_hours" json:"seminar_hours"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// HoursBalanced reports whether the lecture/seminar split adds up to the
// weekly hour total. The mismatch is tolerated, callers only warn on it.
func (c Course) HoursBalanced() bool {
	return c.LectureHours+c.SeminarHours == c.HoursPerWeek
}

// CourseFilter captures supported filters for listing courses.
type CourseFilter struct {
	Search    string
	ClassID   string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
