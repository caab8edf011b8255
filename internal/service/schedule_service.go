package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Teo-Te/ClassSync-sub001/internal/dto"
	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	"github.com/Teo-Te/ClassSync-sub001/internal/scheduler"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
)

type scheduleStore interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleSummary, int, error)
	FindByID(ctx context.Context, id string) (*models.GeneratedSchedule, error)
	Create(ctx context.Context, schedule *models.GeneratedSchedule) error
	Delete(ctx context.Context, id string) error
}

type classSource interface {
	ListAll(ctx context.Context) ([]models.Class, error)
}

type courseSource interface {
	ListAll(ctx context.Context) ([]models.Course, error)
}

type teacherSource interface {
	ListAll(ctx context.Context) ([]models.Teacher, error)
}

type roomSource interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type assignmentSource interface {
	ListAll(ctx context.Context) ([]models.CourseAssignment, error)
}

type classCourseSource interface {
	ListAll(ctx context.Context) ([]models.ClassCourse, error)
}

type generationEngine interface {
	Generate(snap *scheduler.Snapshot) *models.GeneratedSchedule
}

// snapshotLoader fetches the full entity set a generation run consumes.
type snapshotLoader struct {
	classes      classSource
	courses      courseSource
	teachers     teacherSource
	rooms        roomSource
	assignments  assignmentSource
	classCourses classCourseSource
}

func (l snapshotLoader) load(ctx context.Context, constraints models.ScheduleConstraints) (*scheduler.Snapshot, error) {
	classes, err := l.classes.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	courses, err := l.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	teachers, err := l.teachers.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	rooms, err := l.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	assignments, err := l.assignments.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course assignments")
	}
	classCourses, err := l.classCourses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class courses")
	}

	return scheduler.NewSnapshot(scheduler.Input{
		Classes:      classes,
		Courses:      courses,
		Teachers:     teachers,
		Rooms:        rooms,
		Assignments:  assignments,
		ClassCourses: classCourses,
		Constraints:  constraints,
	})
}

// ScheduleServiceConfig governs generation defaults and timetable caching.
type ScheduleServiceConfig struct {
	Defaults     models.ScheduleConstraints
	TimetableTTL time.Duration
}

// ScheduleService runs generation over the current entity snapshot and serves
// stored schedules and their timetable views.
type ScheduleService struct {
	store        scheduleStore
	loader       snapshotLoader
	engine       generationEngine
	cache        *CacheService
	metrics      *MetricsService
	defaults     models.ScheduleConstraints
	timetableTTL time.Duration
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduleService wires schedule generation dependencies.
func NewScheduleService(
	store scheduleStore,
	classes classSource,
	courses courseSource,
	teachers teacherSource,
	rooms roomSource,
	assignments assignmentSource,
	classCourses classCourseSource,
	engine generationEngine,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleServiceConfig,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := cfg.Defaults
	if defaults.DayStartHour == 0 && defaults.DayEndHour == 0 {
		defaults = models.DefaultScheduleConstraints()
	}
	ttl := cfg.TimetableTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ScheduleService{
		store: store,
		loader: snapshotLoader{
			classes:      classes,
			courses:      courses,
			teachers:     teachers,
			rooms:        rooms,
			assignments:  assignments,
			classCourses: classCourses,
		},
		engine:       engine,
		cache:        cache,
		metrics:      metrics,
		defaults:     defaults,
		timetableTTL: ttl,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
	}
}

// Generate builds a schedule from the current entity snapshot and persists it.
// Requests may override individual constraint values, unset ones fall back to
// the configured defaults.
func (s *ScheduleService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*models.GeneratedSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}

	constraints := s.defaults
	if req.Constraints != nil {
		constraints = req.Constraints.Apply(constraints)
	}

	snap, err := s.loader.load(ctx, constraints)
	if err != nil {
		return nil, err
	}

	started := s.now()
	schedule := s.engine.Generate(snap)
	schedule.ID = uuid.NewString()
	schedule.Name = strings.TrimSpace(req.Name)
	if schedule.Name == "" {
		schedule.Name = fmt.Sprintf("Schedule %s", started.UTC().Format("2006-01-02 15:04"))
	}
	schedule.CreatedAt = started.UTC()

	if err := s.store.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store schedule")
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(s.now().Sub(started), schedule)
	}
	s.logger.Info("schedule generated",
		zap.String("schedule_id", schedule.ID),
		zap.Int("sessions", len(schedule.Sessions)),
		zap.Int("conflicts", len(schedule.Conflicts)),
		zap.Float64("score", schedule.Score),
	)
	return schedule, nil
}

// List returns stored schedule summaries with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleSummary, *models.Pagination, error) {
	summaries, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
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
	return summaries, pagination, nil
}

// Get returns a stored schedule with its full session set.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.GeneratedSchedule, error) {
	schedule, err := s.store.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// Delete removes a stored schedule together with its sessions and cached
// timetable views.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, timetableCachePattern(id))
	}
	return nil
}

// Timetable arranges a stored schedule into weekday columns, optionally
// narrowed to one class, teacher or room. Views are cached per scope and
// target.
func (s *ScheduleService) Timetable(ctx context.Context, id string, scope models.TimetableScope, targetID string) (*dto.TimetableResponse, error) {
	if scope == "" {
		scope = models.TimetableScopeAll
	}
	if !scope.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown timetable scope %q", scope))
	}
	if scope == models.TimetableScopeAll {
		targetID = ""
	} else if targetID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "targetId is required for scoped timetables")
	}

	key := timetableCacheKey(id, scope, targetID)
	if s.cache != nil {
		var cached dto.TimetableResponse
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := buildTimetable(schedule, scope, targetID)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, resp, s.timetableTTL)
	}
	return resp, nil
}

var weekdayNames = map[int]string{
	1: "Monday",
	2: "Tuesday",
	3: "Wednesday",
	4: "Thursday",
	5: "Friday",
}

// buildTimetable narrows sessions to the scope and arranges them by weekday.
// Every weekday appears even when empty, so clients can render a fixed grid.
func buildTimetable(schedule *models.GeneratedSchedule, scope models.TimetableScope, targetID string) *dto.TimetableResponse {
	days := make([]dto.TimetableDay, 0, len(weekdayNames))
	for day := 1; day <= len(weekdayNames); day++ {
		days = append(days, dto.TimetableDay{Day: day, DayName: weekdayNames[day], Sessions: []models.ScheduleSession{}})
	}
	for _, session := range schedule.Sessions {
		if !sessionInScope(session, scope, targetID) {
			continue
		}
		if session.Day < 1 || session.Day > len(days) {
			continue
		}
		days[session.Day-1].Sessions = append(days[session.Day-1].Sessions, session)
	}
	for i := range days {
		sessions := days[i].Sessions
		sort.SliceStable(sessions, func(a, b int) bool {
			if sessions[a].StartHour != sessions[b].StartHour {
				return sessions[a].StartHour < sessions[b].StartHour
			}
			return sessions[a].ID < sessions[b].ID
		})
	}
	return &dto.TimetableResponse{
		ScheduleID: schedule.ID,
		Scope:      scope,
		TargetID:   targetID,
		Days:       days,
	}
}

func sessionInScope(session models.ScheduleSession, scope models.TimetableScope, targetID string) bool {
	switch scope {
	case models.TimetableScopeClass:
		return session.ClassID == targetID
	case models.TimetableScopeTeacher:
		return session.TeacherID == targetID
	case models.TimetableScopeRoom:
		return session.RoomID == targetID
	default:
		return true
	}
}

func timetableCacheKey(scheduleID string, scope models.TimetableScope, targetID string) string {
	return fmt.Sprintf("timetable:%s:%s:%s", scheduleID, scope, targetID)
}

func timetableCachePattern(scheduleID string) string {
	return fmt.Sprintf("timetable:%s:*", scheduleID)
}
