package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ScheduleSession is one placed teaching event. Sessions sharing GroupID
// represent the same physical event attended jointly by multiple classes.
// Sessions are produced by the allocator and immutable afterwards, optimizer
// runs replace the full set instead of patching rows.
type ScheduleSession struct {
	ID        string      `db:"session_id" json:"id"`
	ClassID   string      `db:"class_id" json:"class_id"`
	CourseID  string      `db:"course_id" json:"course_id"`
	TeacherID string      `db:"teacher_id" json:"teacher_id"`
	RoomID    string      `db:"room_id" json:"room_id"`
	Type      SessionType `db:"type" json:"type"`
	TimeSlot
	GroupID *string `db:"group_id" json:"group_id,omitempty"`

	ClassName   string `db:"class_name" json:"class_name"`
	CourseName  string `db:"course_name" json:"course_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	RoomName    string `db:"room_name" json:"room_name"`
}

// ConflictSeverity grades a detected conflict.
type ConflictSeverity string

const (
	SeverityWarning  ConflictSeverity = "warning"
	SeverityCritical ConflictSeverity = "critical"
)

// ScheduleConflict describes one detected violation or unmet requirement.
type ScheduleConflict struct {
	Severity ConflictSeverity `json:"severity"`
	Message  string           `json:"message"`
	Affected []string         `json:"affected,omitempty"`
}

// ConflictList is the JSONB-persisted conflict collection of a schedule.
type ConflictList []ScheduleConflict

// CountBySeverity tallies conflicts of the given severity.
func (l ConflictList) CountBySeverity(severity ConflictSeverity) int {
	count := 0
	for _, c := range l {
		if c.Severity == severity {
			count++
		}
	}
	return count
}

// Value marshals the conflict list to JSON for persistence.
func (l ConflictList) Value() (driver.Value, error) {
	if l == nil {
		l = ConflictList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal conflict list: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the conflict list.
func (l *ConflictList) Scan(value interface{}) error {
	if value == nil {
		*l = ConflictList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ConflictList", value)
	}
	if len(data) == 0 {
		*l = ConflictList{}
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("unmarshal conflict list: %w", err)
	}
	return nil
}

// OptimizeMode selects the optimization strategy applied to a schedule.
type OptimizeMode string

const (
	OptimizeModeFix    OptimizeMode = "fix"
	OptimizeModeRefine OptimizeMode = "refine"
)

// Valid reports whether the value is a known optimization mode.
func (m OptimizeMode) Valid() bool {
	return m == OptimizeModeFix || m == OptimizeModeRefine
}

// OptimizationRecord captures one optimizer pass over a schedule.
type OptimizationRecord struct {
	Mode            OptimizeMode `json:"mode"`
	RequestedAt     time.Time    `json:"requested_at"`
	ScoreBefore     float64      `json:"score_before"`
	ScoreAfter      float64      `json:"score_after"`
	TargetConflicts []string     `json:"target_conflicts,omitempty"`
}

// ScheduleMetadata carries generation statistics persisted as JSONB.
// Constraints is the exact set the run used, kept so optimizer passes can
// re-run under identical settings.
type ScheduleMetadata struct {
	UtilizationRate float64              `json:"utilization_rate"`
	GeneratedAt     time.Time            `json:"generated_at"`
	SoftViolations  int                  `json:"soft_violations"`
	Constraints     ScheduleConstraints  `json:"constraints"`
	Optimizations   []OptimizationRecord `json:"optimizations,omitempty"`
}

// Value marshals metadata to JSON for persistence.
func (m ScheduleMetadata) Value() (driver.Value, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule metadata: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the metadata struct.
func (m *ScheduleMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = ScheduleMetadata{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ScheduleMetadata", value)
	}
	if len(data) == 0 {
		*m = ScheduleMetadata{}
		return nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("unmarshal schedule metadata: %w", err)
	}
	return nil
}

// GeneratedSchedule is the aggregate produced by one generation run.
type GeneratedSchedule struct {
	ID        string            `db:"id" json:"id"`
	Name      string            `db:"name" json:"name"`
	Sessions  []ScheduleSession `json:"sessions"`
	Conflicts ConflictList      `db:"conflicts" json:"conflicts"`
	Score     float64           `db:"score" json:"score"`
	Metadata  ScheduleMetadata  `db:"metadata" json:"metadata"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

// ScheduleSummary is the list-view projection of a stored schedule.
type ScheduleSummary struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Score         float64   `db:"score" json:"score"`
	SessionCount  int       `db:"session_count" json:"session_count"`
	ConflictCount int       `db:"conflict_count" json:"conflict_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ScheduleFilter describes query params for listing stored schedules.
type ScheduleFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// TimetableScope narrows a timetable view to one entity.
type TimetableScope string

const (
	TimetableScopeAll     TimetableScope = "all"
	TimetableScopeClass   TimetableScope = "class"
	TimetableScopeTeacher TimetableScope = "teacher"
	TimetableScopeRoom    TimetableScope = "room"
)

// Valid reports whether the scope is a known timetable scope.
func (s TimetableScope) Valid() bool {
	switch s {
	case TimetableScopeAll, TimetableScopeClass, TimetableScopeTeacher, TimetableScopeRoom:
		return true
	}
	return false
}
