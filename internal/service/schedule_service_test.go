package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Teo-Te/ClassSync-sub001/internal/dto"
	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	"github.com/Teo-Te/ClassSync-sub001/internal/scheduler"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
)

type stubClassSource struct {
	items []models.Class
	err   error
}

func (s stubClassSource) ListAll(ctx context.Context) ([]models.Class, error) {
	return s.items, s.err
}

type stubCourseSource struct {
	items []models.Course
}

func (s stubCourseSource) ListAll(ctx context.Context) ([]models.Course, error) {
	return s.items, nil
}

type stubTeacherSource struct {
	items []models.Teacher
}

func (s stubTeacherSource) ListAll(ctx context.Context) ([]models.Teacher, error) {
	return s.items, nil
}

type stubRoomSource struct {
	items []models.Room
}

func (s stubRoomSource) ListAll(ctx context.Context) ([]models.Room, error) {
	return s.items, nil
}

type stubAssignmentSource struct {
	items []models.CourseAssignment
}

func (s stubAssignmentSource) ListAll(ctx context.Context) ([]models.CourseAssignment, error) {
	return s.items, nil
}

type stubClassCourseSource struct {
	items []models.ClassCourse
}

func (s stubClassCourseSource) ListAll(ctx context.Context) ([]models.ClassCourse, error) {
	return s.items, nil
}

type mockScheduleStore struct {
	created    []*models.GeneratedSchedule
	stored     map[string]*models.GeneratedSchedule
	deleted    []string
	listResult []models.ScheduleSummary
	listTotal  int
	findErr    error
}

func (m *mockScheduleStore) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleSummary, int, error) {
	return m.listResult, m.listTotal, nil
}

func (m *mockScheduleStore) FindByID(ctx context.Context, id string) (*models.GeneratedSchedule, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if schedule, ok := m.stored[id]; ok {
		cp := *schedule
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleStore) Create(ctx context.Context, schedule *models.GeneratedSchedule) error {
	if m.stored == nil {
		m.stored = make(map[string]*models.GeneratedSchedule)
	}
	cp := *schedule
	m.created = append(m.created, &cp)
	m.stored[schedule.ID] = &cp
	return nil
}

func (m *mockScheduleStore) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.stored, id)
	return nil
}

// memCacheRepo is an in-memory CacheRepository backed by JSON payloads.
type memCacheRepo struct {
	entries map[string][]byte
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	return nil
}

func (m *memCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func newScheduleServiceFixture(store *mockScheduleStore, cache *CacheService) *ScheduleService {
	classes := stubClassSource{items: []models.Class{
		{ID: "c1", Name: "CS-201", Year: 2, Semester: 1, StudentCount: 25},
	}}
	courses := stubCourseSource{items: []models.Course{
		{ID: "m1", Name: "Algorithms", HoursPerWeek: 4, LectureHours: 2, SeminarHours: 2},
	}}
	teachers := stubTeacherSource{items: []models.Teacher{
		{ID: "t1", Name: "Teacher One", Email: "one@example.com"},
	}}
	rooms := stubRoomSource{items: []models.Room{
		{ID: "r1", Name: "Auditorium A", Type: models.SessionLecture, Capacity: 100},
		{ID: "r2", Name: "Room 101", Type: models.SessionSeminar, Capacity: 30},
	}}
	assignments := stubAssignmentSource{items: []models.CourseAssignment{
		{ID: "a1", TeacherID: "t1", CourseID: "m1", Type: models.SessionLecture},
		{ID: "a2", TeacherID: "t1", CourseID: "m1", Type: models.SessionSeminar},
	}}
	links := stubClassCourseSource{items: []models.ClassCourse{
		{ClassID: "c1", CourseID: "m1"},
	}}
	return NewScheduleService(
		store, classes, courses, teachers, rooms, assignments, links,
		scheduler.NewEngine(zap.NewNop()), cache, nil,
		validator.New(), zap.NewNop(), ScheduleServiceConfig{},
	)
}

func TestScheduleServiceGenerate(t *testing.T) {
	store := &mockScheduleStore{}
	service := newScheduleServiceFixture(store, nil)

	schedule, err := service.Generate(context.Background(), dto.GenerateScheduleRequest{Name: "Autumn draft"})
	require.NoError(t, err)
	assert.NotEmpty(t, schedule.ID)
	assert.Equal(t, "Autumn draft", schedule.Name)
	assert.NotEmpty(t, schedule.Sessions)
	assert.Empty(t, schedule.Conflicts)
	require.Len(t, store.created, 1)
	assert.Equal(t, schedule.ID, store.created[0].ID)
	assert.Equal(t, models.DefaultScheduleConstraints(), schedule.Metadata.Constraints)
}

func TestScheduleServiceGenerateDefaultsName(t *testing.T) {
	store := &mockScheduleStore{}
	service := newScheduleServiceFixture(store, nil)

	schedule, err := service.Generate(context.Background(), dto.GenerateScheduleRequest{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(schedule.Name, "Schedule "), "got %q", schedule.Name)
}

func TestScheduleServiceGenerateAppliesOverrides(t *testing.T) {
	store := &mockScheduleStore{}
	service := newScheduleServiceFixture(store, nil)

	maxHours := 4
	schedule, err := service.Generate(context.Background(), dto.GenerateScheduleRequest{
		Constraints: &dto.ConstraintOverrides{MaxTeacherHoursPerDay: &maxHours},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, schedule.Metadata.Constraints.MaxTeacherHoursPerDay)
	assert.Equal(t, 9, schedule.Metadata.Constraints.DayStartHour)
}

func TestScheduleServiceGenerateSourceFailure(t *testing.T) {
	store := &mockScheduleStore{}
	service := newScheduleServiceFixture(store, nil)
	service.loader.classes = stubClassSource{err: errors.New("db down")}

	_, err := service.Generate(context.Background(), dto.GenerateScheduleRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.created)
}

func TestScheduleServiceGenerateInvalidSnapshot(t *testing.T) {
	store := &mockScheduleStore{}
	service := newScheduleServiceFixture(store, nil)
	service.loader.classCourses = stubClassCourseSource{items: []models.ClassCourse{
		{ClassID: "c1", CourseID: "ghost"},
	}}

	_, err := service.Generate(context.Background(), dto.GenerateScheduleRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidSnapshot.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceGetNotFound(t *testing.T) {
	service := newScheduleServiceFixture(&mockScheduleStore{}, nil)

	_, err := service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceDelete(t *testing.T) {
	store := &mockScheduleStore{stored: map[string]*models.GeneratedSchedule{
		"s1": {ID: "s1", Name: "Autumn draft"},
	}}
	service := newScheduleServiceFixture(store, nil)

	require.NoError(t, service.Delete(context.Background(), "s1"))
	assert.Equal(t, []string{"s1"}, store.deleted)
}

func storedTimetableFixture() *models.GeneratedSchedule {
	group := "grp:1"
	return &models.GeneratedSchedule{
		ID:   "s1",
		Name: "Autumn draft",
		Sessions: []models.ScheduleSession{
			{
				ID: "c1:m1:lecture:1", ClassID: "c1", CourseID: "m1", TeacherID: "t1", RoomID: "r1",
				Type: models.SessionLecture, TimeSlot: models.TimeSlot{Day: 1, StartHour: 11, DurationHours: 2},
				GroupID: &group, ClassName: "CS-201", CourseName: "Algorithms", TeacherName: "Teacher One", RoomName: "Auditorium A",
			},
			{
				ID: "c1:m1:seminar:1", ClassID: "c1", CourseID: "m1", TeacherID: "t1", RoomID: "r2",
				Type: models.SessionSeminar, TimeSlot: models.TimeSlot{Day: 1, StartHour: 9, DurationHours: 2},
				ClassName: "CS-201", CourseName: "Algorithms", TeacherName: "Teacher One", RoomName: "Room 101",
			},
			{
				ID: "c2:m1:lecture:1", ClassID: "c2", CourseID: "m1", TeacherID: "t1", RoomID: "r1",
				Type: models.SessionLecture, TimeSlot: models.TimeSlot{Day: 2, StartHour: 9, DurationHours: 2},
				GroupID: &group, ClassName: "CS-202", CourseName: "Algorithms", TeacherName: "Teacher One", RoomName: "Auditorium A",
			},
		},
		Score: 95,
	}
}

func TestScheduleServiceTimetableScopes(t *testing.T) {
	store := &mockScheduleStore{stored: map[string]*models.GeneratedSchedule{
		"s1": storedTimetableFixture(),
	}}
	service := newScheduleServiceFixture(store, nil)

	all, err := service.Timetable(context.Background(), "s1", models.TimetableScopeAll, "")
	require.NoError(t, err)
	require.Len(t, all.Days, 5)
	assert.Equal(t, "Monday", all.Days[0].DayName)
	require.Len(t, all.Days[0].Sessions, 2)
	// Monday is ordered by start hour, seminar at 9 first.
	assert.Equal(t, "c1:m1:seminar:1", all.Days[0].Sessions[0].ID)
	assert.Empty(t, all.Days[2].Sessions)

	byClass, err := service.Timetable(context.Background(), "s1", models.TimetableScopeClass, "c2")
	require.NoError(t, err)
	assert.Empty(t, byClass.Days[0].Sessions)
	require.Len(t, byClass.Days[1].Sessions, 1)
	assert.Equal(t, "c2:m1:lecture:1", byClass.Days[1].Sessions[0].ID)

	byRoom, err := service.Timetable(context.Background(), "s1", models.TimetableScopeRoom, "r2")
	require.NoError(t, err)
	require.Len(t, byRoom.Days[0].Sessions, 1)
	assert.Equal(t, models.SessionSeminar, byRoom.Days[0].Sessions[0].Type)
}

func TestScheduleServiceTimetableValidation(t *testing.T) {
	service := newScheduleServiceFixture(&mockScheduleStore{}, nil)

	_, err := service.Timetable(context.Background(), "s1", "building", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.Timetable(context.Background(), "s1", models.TimetableScopeTeacher, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceTimetableUsesCache(t *testing.T) {
	store := &mockScheduleStore{stored: map[string]*models.GeneratedSchedule{
		"s1": storedTimetableFixture(),
	}}
	cacheRepo := &memCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	service := newScheduleServiceFixture(store, cache)

	first, err := service.Timetable(context.Background(), "s1", models.TimetableScopeAll, "")
	require.NoError(t, err)

	// Later loads are served from cache even when the store is unavailable.
	store.findErr = errors.New("db down")
	second, err := service.Timetable(context.Background(), "s1", models.TimetableScopeAll, "")
	require.NoError(t, err)
	assert.Equal(t, first.Days, second.Days)

	// Deleting drops the cached views, so the store failure now surfaces.
	store.findErr = nil
	require.NoError(t, service.Delete(context.Background(), "s1"))
	assert.Empty(t, cacheRepo.entries)
}
