package models

import "time"

// Class represents a student group that attends courses together.
type Class struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Year         int       `db:"year" json:"year"`
	Semester     int       `db:"semester" json:"semester"`
	StudentCount int       `db:"student_count" json:"student_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	Year      *int
	Semester  *int
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ClassCourse represents the mapping between a class and a course it requires.
type ClassCourse struct {
	ClassID   string    `db:"class_id" json:"class_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassCourseDetail is a view that includes course info for responses.
type ClassCourseDetail struct {
	ClassCourse
	CourseName   string `db:"course_name" json:"course_name"`
	HoursPerWeek int    `db:"hours_per_week" json:"hours_per_week"`
	LectureHours int    `db:"lecture_hours" json:"lecture_hours"`
	SeminarHours int    `db:"seminar_hours" json:"seminar_hours"`
}
