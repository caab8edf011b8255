package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Teo-Te/ClassSync-sub001/internal/dto"
	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	"github.com/Teo-Te/ClassSync-sub001/internal/scheduler"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
)

type optimizedScheduleStore interface {
	FindByID(ctx context.Context, id string) (*models.GeneratedSchedule, error)
	ReplaceResult(ctx context.Context, schedule *models.GeneratedSchedule) error
}

type optimizerEngine interface {
	GenerateWithOptions(snap *scheduler.Snapshot, opts scheduler.Options) *models.GeneratedSchedule
}

// OptimizerService re-runs generation over a stored schedule. Fix mode keeps
// every session not implicated in the targeted conflicts and regenerates the
// rest, refine mode re-runs the full allocation under nudged soft weights.
// A run that scores below the stored schedule is discarded.
type OptimizerService struct {
	store     optimizedScheduleStore
	loader    snapshotLoader
	engine    optimizerEngine
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewOptimizerService wires optimizer dependencies.
func NewOptimizerService(
	store optimizedScheduleStore,
	classes classSource,
	courses courseSource,
	teachers teacherSource,
	rooms roomSource,
	assignments assignmentSource,
	classCourses classCourseSource,
	engine optimizerEngine,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *OptimizerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptimizerService{
		store: store,
		loader: snapshotLoader{
			classes:      classes,
			courses:      courses,
			teachers:     teachers,
			rooms:        rooms,
			assignments:  assignments,
			classCourses: classCourses,
		},
		engine:    engine,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Optimize runs one optimizer pass and persists the replacement result when
// it scores at least as well as the stored schedule. The run uses the exact
// constraint set recorded at generation time against the current entity
// snapshot.
func (s *OptimizerService) Optimize(ctx context.Context, scheduleID string, req dto.OptimizeScheduleRequest) (*models.GeneratedSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimize payload")
	}
	if !req.Mode.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown optimize mode %q", req.Mode))
	}

	prior, err := s.store.FindByID(ctx, scheduleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	constraints := prior.Metadata.Constraints
	if constraints == (models.ScheduleConstraints{}) {
		// Rows stored before constraints were recorded re-run under the
		// stock set.
		constraints = models.DefaultScheduleConstraints()
	}

	snap, err := s.loader.load(ctx, constraints)
	if err != nil {
		return nil, err
	}

	opts := scheduler.Options{}
	switch req.Mode {
	case models.OptimizeModeFix:
		opts.Pinned = pinnedSessions(prior, req.TargetConflicts)
	case models.OptimizeModeRefine:
		weights := scheduler.DefaultSoftWeights()
		s.applyWeightAdjustments(&weights, req.WeightAdjustments)
		opts.Weights = &weights
	}

	started := s.now()
	result := s.engine.GenerateWithOptions(snap, opts)
	if result.Score < prior.Score {
		s.logger.Info("optimization discarded",
			zap.String("schedule_id", scheduleID),
			zap.String("mode", string(req.Mode)),
			zap.Float64("score_before", prior.Score),
			zap.Float64("score_after", result.Score),
		)
		return prior, nil
	}

	updated := *result
	updated.ID = prior.ID
	updated.Name = prior.Name
	updated.CreatedAt = prior.CreatedAt
	updated.Metadata.Optimizations = append(prior.Metadata.Optimizations, models.OptimizationRecord{
		Mode:            req.Mode,
		RequestedAt:     started.UTC(),
		ScoreBefore:     prior.Score,
		ScoreAfter:      result.Score,
		TargetConflicts: req.TargetConflicts,
	})

	if err := s.store.ReplaceResult(ctx, &updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store optimized schedule")
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(s.now().Sub(started), &updated)
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, timetableCachePattern(updated.ID))
	}
	s.logger.Info("schedule optimized",
		zap.String("schedule_id", updated.ID),
		zap.String("mode", string(req.Mode)),
		zap.Float64("score_before", prior.Score),
		zap.Float64("score_after", updated.Score),
		zap.Int("pinned", len(opts.Pinned)),
	)
	return &updated, nil
}

// applyWeightAdjustments multiplies stock weights by the requested factors.
// Unknown weight names are skipped, suggestions arrive from outside and may
// reference settings this build does not have.
func (s *OptimizerService) applyWeightAdjustments(weights *scheduler.SoftWeights, adjustments map[string]float64) {
	fields := map[string]*float64{
		"preferred_window": &weights.PreferredWindow,
		"window_distance":  &weights.WindowDistance,
		"max_end_overrun":  &weights.MaxEndOverrun,
		"teacher_overload": &weights.TeacherOverload,
		"back_to_back":     &weights.BackToBack,
		"day_balance":      &weights.DayBalance,
		"morning_lecture":  &weights.MorningLecture,
	}
	for name, factor := range adjustments {
		field, ok := fields[name]
		if !ok {
			s.logger.Warn("ignoring unknown soft weight", zap.String("weight", name))
			continue
		}
		*field *= factor
	}
}

// pinnedSessions returns the sessions a fix run re-emits verbatim: everything
// not implicated in the targeted conflicts. When no targets are given every
// conflict counts. Conflicts reference entities by display name, so
// implication is checked against the session's names.
func pinnedSessions(schedule *models.GeneratedSchedule, targets []string) []models.ScheduleSession {
	conflicts := schedule.Conflicts
	if len(targets) > 0 {
		wanted := make(map[string]struct{}, len(targets))
		for _, t := range targets {
			wanted[t] = struct{}{}
		}
		var matched models.ConflictList
		for _, c := range conflicts {
			if _, ok := wanted[c.Message]; ok {
				matched = append(matched, c)
			}
		}
		conflicts = matched
	}

	affected := make(map[string]struct{})
	for _, c := range conflicts {
		for _, name := range c.Affected {
			affected[name] = struct{}{}
		}
	}

	pinned := make([]models.ScheduleSession, 0, len(schedule.Sessions))
	for _, session := range schedule.Sessions {
		if sessionImplicated(session, affected) {
			continue
		}
		pinned = append(pinned, session)
	}
	return pinned
}

func sessionImplicated(session models.ScheduleSession, affected map[string]struct{}) bool {
	for _, name := range []string{session.ClassName, session.CourseName, session.TeacherName, session.RoomName} {
		if _, ok := affected[name]; ok {
			return true
		}
	}
	return false
}
