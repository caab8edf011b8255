package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// ClassCourseRepository manages class-course requirement links.
type ClassCourseRepository struct {
	db *sqlx.DB
}

// NewClassCourseRepository creates a new repository.
func NewClassCourseRepository(db *sqlx.DB) *ClassCourseRepository {
	return &ClassCourseRepository{db: db}
}

// ListByClass returns the courses a class requires, with course hour info.
func (r *ClassCourseRepository) ListByClass(ctx context.Context, classID string) ([]models.ClassCourseDetail, error) {
	const query = `
SELECT cc.class_id, cc.course_id, cc.created_at,
       c.name AS course_name, c.hours_per_week, c.lecture_hours, c.seminar_hours
FROM class_courses cc
JOIN courses c ON c.id = cc.course_id
WHERE cc.class_id = $1
ORDER BY c.name ASC`
	var links []models.ClassCourseDetail
	if err := r.db.SelectContext(ctx, &links, query, classID); err != nil {
		return nil, fmt.Errorf("list class courses: %w", err)
	}
	return links, nil
}

// ListAll returns every class-course link, used to build generation
// snapshots.
func (r *ClassCourseRepository) ListAll(ctx context.Context) ([]models.ClassCourse, error) {
	const query = `SELECT class_id, course_id, created_at FROM class_courses ORDER BY class_id ASC, course_id ASC`
	var links []models.ClassCourse
	if err := r.db.SelectContext(ctx, &links, query); err != nil {
		return nil, fmt.Errorf("list all class courses: %w", err)
	}
	return links, nil
}

// ReplaceCourses replaces the course set of a class within a transaction.
func (r *ClassCourseRepository) ReplaceCourses(ctx context.Context, classID string, courseIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace class courses: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM class_courses WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("clear existing class courses: %w", err)
	}

	if len(courseIDs) == 0 {
		if err = tx.Commit(); err != nil {
			return fmt.Errorf("commit replace class courses: %w", err)
		}
		return nil
	}

	now := time.Now().UTC()
	for _, courseID := range courseIDs {
		link := models.ClassCourse{ClassID: classID, CourseID: courseID, CreatedAt: now}
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO class_courses (class_id, course_id, created_at) VALUES (:class_id, :course_id, :created_at)`, &link); err != nil {
			return fmt.Errorf("insert class course: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace class courses: %w", err)
	}
	return nil
}

// CountByCourse returns how many classes require a course.
func (r *ClassCourseRepository) CountByCourse(ctx context.Context, courseID string) (int, error) {
	const query = `SELECT COUNT(*) FROM class_courses WHERE course_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("count class courses by course: %w", err)
	}
	return count, nil
}
