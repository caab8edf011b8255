package scheduler

import (
	"time"

	"go.uber.org/zap"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// Engine runs schedule generation over validated snapshots. An Engine is
// stateless between runs and safe for concurrent use, every run works on its
// own allocator state.
type Engine struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewEngine constructs a generation engine.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, now: time.Now}
}

// Options adjusts a single generation run. Pinned sessions are re-emitted
// verbatim and count against the derived requirements. Weights, when set,
// replace the stock soft-constraint weights.
type Options struct {
	Pinned  []models.ScheduleSession
	Weights *SoftWeights
}

// Generate produces a schedule for the snapshot under stock options. Equal
// snapshots yield byte-identical results.
func (e *Engine) Generate(snap *Snapshot) *models.GeneratedSchedule {
	return e.GenerateWithOptions(snap, Options{})
}

// GenerateWithOptions produces a schedule honoring the given run options.
func (e *Engine) GenerateWithOptions(snap *Snapshot, opts Options) *models.GeneratedSchedule {
	started := e.now()

	weights := DefaultSoftWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}

	required := deriveRequirements(snap)
	alloc := newAllocator(snap, weights)
	alloc.run(required, opts.Pinned)

	sessions := alloc.sessions
	if sessions == nil {
		sessions = []models.ScheduleSession{}
	}

	conflicts := detectConflicts(snap, sessions, alloc.failures)
	soft := countSoftViolations(snap, sessions)
	score := scoreSchedule(conflicts, soft)

	schedule := &models.GeneratedSchedule{
		Sessions:  sessions,
		Conflicts: conflicts,
		Score:     score,
		Metadata: models.ScheduleMetadata{
			UtilizationRate: utilizationRate(alloc.grid, sessions),
			GeneratedAt:     e.now().UTC(),
			SoftViolations:  soft,
			Constraints:     snap.Constraints,
		},
	}

	e.logger.Debug("schedule generated",
		zap.Int("required_sessions", len(required)),
		zap.Int("pinned_sessions", len(opts.Pinned)),
		zap.Int("placed_sessions", len(sessions)),
		zap.Int("placement_failures", len(alloc.failures)),
		zap.Int("conflicts", len(conflicts)),
		zap.Float64("score", score),
		zap.Duration("elapsed", e.now().Sub(started)),
	)

	return schedule
}
