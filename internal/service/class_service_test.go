package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
)

type mockClassRepo struct {
	items      map[string]*models.Class
	nameIndex  map[string]string
	listResult []models.Class
	listTotal  int
	deleted    []string
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := m.items[id]; ok {
		cp := *class
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	if owner, ok := m.nameIndex[name]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	if m.items == nil {
		m.items = make(map[string]*models.Class)
	}
	if class.ID == "" {
		class.ID = "generated"
	}
	now := time.Now()
	class.CreatedAt = now
	class.UpdatedAt = now
	cp := *class
	m.items[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	cp := *class
	m.items[class.ID] = &cp
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

type mockClassCourseLinker struct {
	byClass  map[string][]models.ClassCourseDetail
	replaced map[string][]string
}

func (m *mockClassCourseLinker) ListByClass(ctx context.Context, classID string) ([]models.ClassCourseDetail, error) {
	return m.byClass[classID], nil
}

func (m *mockClassCourseLinker) ReplaceCourses(ctx context.Context, classID string, courseIDs []string) error {
	if m.replaced == nil {
		m.replaced = make(map[string][]string)
	}
	m.replaced[classID] = courseIDs
	return nil
}

type mockCourseFinder struct {
	items map[string]*models.Course
}

func (m *mockCourseFinder) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := m.items[id]; ok {
		cp := *course
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func TestClassServiceCreate(t *testing.T) {
	repo := &mockClassRepo{}
	service := NewClassService(repo, &mockClassCourseLinker{}, &mockCourseFinder{}, validator.New(), zap.NewNop())

	class, err := service.Create(context.Background(), CreateClassRequest{
		Name:         "CS-201",
		Year:         2,
		Semester:     1,
		StudentCount: 28,
	})
	require.NoError(t, err)
	assert.Equal(t, "CS-201", class.Name)
	assert.Len(t, repo.items, 1)
}

func TestClassServiceCreateDuplicateName(t *testing.T) {
	repo := &mockClassRepo{nameIndex: map[string]string{"CS-201": "another"}}
	service := NewClassService(repo, &mockClassCourseLinker{}, &mockCourseFinder{}, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateClassRequest{Name: "CS-201", Year: 2, Semester: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestClassServiceCreateRejectsBadSemester(t *testing.T) {
	service := NewClassService(&mockClassRepo{}, &mockClassCourseLinker{}, &mockCourseFinder{}, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateClassRequest{Name: "CS-201", Year: 2, Semester: 3})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassServiceUpdateAppliesDeltas(t *testing.T) {
	repo := &mockClassRepo{
		items: map[string]*models.Class{
			"c1": {ID: "c1", Name: "CS-201", Year: 2, Semester: 1, StudentCount: 28},
		},
	}
	service := NewClassService(repo, &mockClassCourseLinker{}, &mockCourseFinder{}, validator.New(), zap.NewNop())

	count := 31
	updated, err := service.Update(context.Background(), "c1", UpdateClassRequest{StudentCount: &count})
	require.NoError(t, err)
	assert.Equal(t, 31, updated.StudentCount)
	assert.Equal(t, "CS-201", updated.Name)
}

func TestClassServiceReplaceCourses(t *testing.T) {
	repo := &mockClassRepo{
		items: map[string]*models.Class{
			"c1": {ID: "c1", Name: "CS-201", Year: 2, Semester: 1},
		},
	}
	linker := &mockClassCourseLinker{
		byClass: map[string][]models.ClassCourseDetail{
			"c1": {
				{ClassCourse: models.ClassCourse{ClassID: "c1", CourseID: "m1"}, CourseName: "Algorithms", HoursPerWeek: 4},
				{ClassCourse: models.ClassCourse{ClassID: "c1", CourseID: "m2"}, CourseName: "Databases", HoursPerWeek: 3},
			},
		},
	}
	courses := &mockCourseFinder{items: map[string]*models.Course{
		"m1": {ID: "m1", Name: "Algorithms", HoursPerWeek: 4},
		"m2": {ID: "m2", Name: "Databases", HoursPerWeek: 3},
	}}
	service := NewClassService(repo, linker, courses, validator.New(), zap.NewNop())

	// Duplicate ids collapse to one link.
	details, err := service.ReplaceCourses(context.Background(), "c1", ReplaceClassCoursesRequest{
		CourseIDs: []string{"m1", "m2", "m1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, linker.replaced["c1"])
	assert.Len(t, details, 2)
}

func TestClassServiceReplaceCoursesUnknownCourse(t *testing.T) {
	repo := &mockClassRepo{
		items: map[string]*models.Class{
			"c1": {ID: "c1", Name: "CS-201", Year: 2, Semester: 1},
		},
	}
	linker := &mockClassCourseLinker{}
	service := NewClassService(repo, linker, &mockCourseFinder{}, validator.New(), zap.NewNop())

	_, err := service.ReplaceCourses(context.Background(), "c1", ReplaceClassCoursesRequest{CourseIDs: []string{"ghost"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, linker.replaced)
}

func TestClassServiceCoursesNotFound(t *testing.T) {
	service := NewClassService(&mockClassRepo{}, &mockClassCourseLinker{}, &mockCourseFinder{}, validator.New(), zap.NewNop())

	_, err := service.Courses(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
