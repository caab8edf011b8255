package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// AssignmentRepository manages teacher-course qualifications. The schema
// keys on (course_id, type), so assigning a side that already has a holder
// replaces it.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns assignments with teacher and course names.
func (r *AssignmentRepository) List(ctx context.Context, filter models.CourseAssignmentFilter) ([]models.CourseAssignmentDetail, int, error) {
	base := `FROM course_assignments ca
JOIN teachers t ON t.id = ca.teacher_id
JOIN courses c ON c.id = ca.course_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("ca.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("ca.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("ca.type = $%d", len(args)+1))
		args = append(args, *filter.Type)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"created_at":   "ca.created_at",
		"type":         "ca.type",
		"teacher_name": "t.name",
		"course_name":  "c.name",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "ca.created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT ca.id, ca.teacher_id, ca.course_id, ca.type, ca.created_at,
       t.name AS teacher_name, c.name AS course_name
%s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)
	var assignments []models.CourseAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// ListAll returns every assignment, used to build generation snapshots.
func (r *AssignmentRepository) ListAll(ctx context.Context) ([]models.CourseAssignment, error) {
	const query = `SELECT id, teacher_id, course_id, type, created_at FROM course_assignments ORDER BY course_id ASC, type ASC`
	var assignments []models.CourseAssignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list all assignments: %w", err)
	}
	return assignments, nil
}

// FindByID fetches an assignment by ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.CourseAssignment, error) {
	const query = `SELECT id, teacher_id, course_id, type, created_at FROM course_assignments WHERE id = $1`
	var assignment models.CourseAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Upsert installs the teacher as the holder of a (course, type) side,
// replacing any previous holder.
func (r *AssignmentRepository) Upsert(ctx context.Context, assignment *models.CourseAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO course_assignments (id, teacher_id, course_id, type, created_at)
		VALUES (:id, :teacher_id, :course_id, :type, :created_at)
		ON CONFLICT (course_id, type) DO UPDATE
		SET teacher_id = EXCLUDED.teacher_id,
		    created_at = EXCLUDED.created_at`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("upsert assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM course_assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// ListByTeacher returns the assignments held by one teacher.
func (r *AssignmentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.CourseAssignmentDetail, error) {
	const query = `SELECT ca.id, ca.teacher_id, ca.course_id, ca.type, ca.created_at,
       t.name AS teacher_name, c.name AS course_name
FROM course_assignments ca
JOIN teachers t ON t.id = ca.teacher_id
JOIN courses c ON c.id = ca.course_id
WHERE ca.teacher_id = $1
ORDER BY c.name ASC, ca.type ASC`
	var assignments []models.CourseAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID); err != nil {
		return nil, fmt.Errorf("list assignments by teacher: %w", err)
	}
	return assignments, nil
}
