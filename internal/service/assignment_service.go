package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.CourseAssignmentFilter) ([]models.CourseAssignmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.CourseAssignment, error)
	Upsert(ctx context.Context, assignment *models.CourseAssignment) error
	Delete(ctx context.Context, id string) error
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// AssignTeacherRequest nominates a teacher for one side of a course. A
// (course, type) pair holds at most one teacher, assigning replaces the
// previous holder instead of stacking.
type AssignTeacherRequest struct {
	TeacherID string             `json:"teacher_id" validate:"required"`
	CourseID  string             `json:"course_id" validate:"required"`
	Type      models.SessionType `json:"type" validate:"required,oneof=lecture seminar"`
}

// AssignmentService orchestrates teacher-course qualification records.
type AssignmentService struct {
	repo      assignmentRepository
	teachers  teacherFinder
	courses   courseFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, teachers teacherFinder, courses courseFinder, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, teachers: teachers, courses: courses, validator: validate, logger: logger}
}

// List returns assignments plus pagination data.
func (s *AssignmentService) List(ctx context.Context, filter models.CourseAssignmentFilter) ([]models.CourseAssignmentDetail, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return assignments, pagination, nil
}

// Assign installs the teacher as the holder of a (course, type) side.
func (s *AssignmentService) Assign(ctx context.Context, req AssignTeacherRequest) (*models.CourseAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	assignment := &models.CourseAssignment{
		TeacherID: req.TeacherID,
		CourseID:  req.CourseID,
		Type:      req.Type,
	}
	if err := s.repo.Upsert(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign teacher")
	}
	return assignment, nil
}

// Delete removes an assignment, leaving the (course, type) side unheld.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}
