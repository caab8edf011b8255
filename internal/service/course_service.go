package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseLinkCounter interface {
	CountByCourse(ctx context.Context, courseID string) (int, error)
}

// CreateCourseRequest represents payload for creating courses.
type CreateCourseRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	HoursPerWeek int    `json:"hours_per_week" validate:"required,min=1,max=40"`
	LectureHours int    `json:"lecture_hours" validate:"min=0,max=40"`
	SeminarHours int    `json:"seminar_hours" validate:"min=0,max=40"`
}

// UpdateCourseRequest is a per-field delta payload for updating courses.
type UpdateCourseRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=120"`
	HoursPerWeek *int    `json:"hours_per_week" validate:"omitempty,min=1,max=40"`
	LectureHours *int    `json:"lecture_hours" validate:"omitempty,min=0,max=40"`
	SeminarHours *int    `json:"seminar_hours" validate:"omitempty,min=0,max=40"`
}

// CourseService orchestrates course operations.
type CourseService struct {
	repo      courseRepository
	links     courseLinkCounter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, links courseLinkCounter, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, links: links, validator: validate, logger: logger}
}

// List returns courses plus pagination data.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
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
	return courses, pagination, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create registers a new course record. A lecture/seminar split that does not
// add up to the weekly total is tolerated and only logged.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := &models.Course{
		Name:         strings.TrimSpace(req.Name),
		HoursPerWeek: req.HoursPerWeek,
		LectureHours: req.LectureHours,
		SeminarHours: req.SeminarHours,
	}
	s.warnOnUnbalancedHours(course)

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update applies the provided field deltas to an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	if req.Name != nil {
		course.Name = strings.TrimSpace(*req.Name)
	}
	if req.HoursPerWeek != nil {
		course.HoursPerWeek = *req.HoursPerWeek
	}
	if req.LectureHours != nil {
		course.LectureHours = *req.LectureHours
	}
	if req.SeminarHours != nil {
		course.SeminarHours = *req.SeminarHours
	}
	s.warnOnUnbalancedHours(course)

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes a course. Classes still requiring the course block deletion.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	count, err := s.links.CountByCourse(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course usage")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "course is still required by classes")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}

func (s *CourseService) warnOnUnbalancedHours(course *models.Course) {
	if course.HoursBalanced() {
		return
	}
	s.logger.Warn("course hour split does not match weekly total",
		zap.String("course", course.Name),
		zap.Int("hours_per_week", course.HoursPerWeek),
		zap.Int("lecture_hours", course.LectureHours),
		zap.Int("seminar_hours", course.SeminarHours),
	)
}
