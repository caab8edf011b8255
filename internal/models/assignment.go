package models

import "time"

// SessionType distinguishes lectures from seminars. Rooms carry the same
// type to mark which kind of session they host.
type SessionType string

const (
	SessionLecture SessionType = "lecture"
	SessionSeminar SessionType = "seminar"
)

// Valid reports whether the value is one of the known session types.
func (t SessionType) Valid() bool {
	return t == SessionLecture || t == SessionSeminar
}

// CourseAssignment qualifies a teacher for one side of a course. At most one
// teacher holds a given (course, type) pair, reassignment replaces the holder.
type CourseAssignment struct {
	ID        string      `db:"id" json:"id"`
	TeacherID string      `db:"teacher_id" json:"teacher_id"`
	CourseID  string      `db:"course_id" json:"course_id"`
	Type      SessionType `db:"type" json:"type"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// CourseAssignmentDetail is a view that includes teacher and course names.
type CourseAssignmentDetail struct {
	CourseAssignment
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	CourseName  string `db:"course_name" json:"course_name"`
}

// CourseAssignmentFilter captures filtering options for listing assignments.
type CourseAssignmentFilter struct {
	TeacherID string
	CourseID  string
	Type      *SessionType
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
