package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

type classCourseLinker interface {
	ListByClass(ctx context.Context, classID string) ([]models.ClassCourseDetail, error)
	ReplaceCourses(ctx context.Context, classID string, courseIDs []string) error
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// CreateClassRequest represents payload for creating classes.
type CreateClassRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Year         int    `json:"year" validate:"required,min=1,max=13"`
	Semester     int    `json:"semester" validate:"required,min=1,max=2"`
	StudentCount int    `json:"student_count" validate:"min=0,max=500"`
}

// UpdateClassRequest is a per-field delta payload for updating classes.
type UpdateClassRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=120"`
	Year         *int    `json:"year" validate:"omitempty,min=1,max=13"`
	Semester     *int    `json:"semester" validate:"omitempty,min=1,max=2"`
	StudentCount *int    `json:"student_count" validate:"omitempty,min=0,max=500"`
}

// ReplaceClassCoursesRequest carries the replacement course set for a class.
type ReplaceClassCoursesRequest struct {
	CourseIDs []string `json:"course_ids" validate:"required,dive,required"`
}

// ClassService orchestrates class operations and their course links.
type ClassService struct {
	repo      classRepository
	links     classCourseLinker
	courses   courseFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(repo classRepository, links classCourseLinker, courses courseFinder, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, links: links, courses: courses, validator: validate, logger: logger}
}

// List returns classes plus pagination data.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
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
	return classes, pagination, nil
}

// Get returns a class by id.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create registers a new class record.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if err := s.ensureUniqueName(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	class := &models.Class{
		Name:         strings.TrimSpace(req.Name),
		Year:         req.Year,
		Semester:     req.Semester,
		StudentCount: req.StudentCount,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Update applies the provided field deltas to an existing class.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	if req.Name != nil {
		if err := s.ensureUniqueName(ctx, *req.Name, id); err != nil {
			return nil, err
		}
		class.Name = strings.TrimSpace(*req.Name)
	}
	if req.Year != nil {
		class.Year = *req.Year
	}
	if req.Semester != nil {
		class.Semester = *req.Semester
	}
	if req.StudentCount != nil {
		class.StudentCount = *req.StudentCount
	}

	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class along with its course links.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}

// Courses returns the course requirements of a class.
func (s *ClassService) Courses(ctx context.Context, id string) ([]models.ClassCourseDetail, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	links, err := s.links.ListByClass(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class courses")
	}
	return links, nil
}

// ReplaceCourses swaps the course requirement set of a class. Every referenced
// course must exist; duplicates in the request collapse to one link.
func (s *ClassService) ReplaceCourses(ctx context.Context, id string, req ReplaceClassCoursesRequest) ([]models.ClassCourseDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course link payload")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	seen := make(map[string]struct{}, len(req.CourseIDs))
	courseIDs := make([]string, 0, len(req.CourseIDs))
	for _, courseID := range req.CourseIDs {
		if _, dup := seen[courseID]; dup {
			continue
		}
		seen[courseID] = struct{}{}
		if _, err := s.courses.FindByID(ctx, courseID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("course %s does not exist", courseID))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify course")
		}
		courseIDs = append(courseIDs, courseID)
	}

	if err := s.links.ReplaceCourses(ctx, id, courseIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace class courses")
	}
	return s.Courses(ctx, id)
}

func (s *ClassService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "class name already used")
	}
	return nil
}
