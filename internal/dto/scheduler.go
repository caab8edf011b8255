package dto

import "github.com/Teo-Te/ClassSync-sub001/internal/models"

// ConstraintOverrides carries per-field optional overrides applied on top of
// the configured generation defaults. Absent fields leave the default alone.
type ConstraintOverrides struct {
	DayStartHour          *int `json:"dayStartHour" validate:"omitempty,min=0,max=23"`
	DayEndHour            *int `json:"dayEndHour" validate:"omitempty,min=1,max=24"`
	LectureSessionLength  *int `json:"lectureSessionLength" validate:"omitempty,min=1,max=8"`
	SeminarSessionLength  *int `json:"seminarSessionLength" validate:"omitempty,min=1,max=8"`
	PreferredStartHour    *int `json:"preferredStartHour" validate:"omitempty,min=0,max=23"`
	PreferredEndHour      *int `json:"preferredEndHour" validate:"omitempty,min=1,max=24"`
	MaxEndHour            *int `json:"maxEndHour" validate:"omitempty,min=1,max=24"`
	MaxTeacherHoursPerDay *int `json:"maxTeacherHoursPerDay" validate:"omitempty,min=1,max=16"`
	LargeClassThreshold   *int `json:"largeClassThreshold" validate:"omitempty,min=1"`

	AvoidBackToBackSessions       *bool `json:"avoidBackToBackSessions"`
	UseAuditoriumsForLargeClasses *bool `json:"useAuditoriumsForLargeClasses"`
	AvoidSplittingSessions        *bool `json:"avoidSplittingSessions"`
	PrioritizeMorningLectures     *bool `json:"prioritizeMorningLectures"`
	GroupSameCourseClasses        *bool `json:"groupSameCourseClasses"`
	DistributeEvenlyAcrossWeek    *bool `json:"distributeEvenlyAcrossWeek"`
}

// Apply merges the overrides into a constraint set.
func (o *ConstraintOverrides) Apply(c models.ScheduleConstraints) models.ScheduleConstraints {
	if o == nil {
		return c
	}
	if o.DayStartHour != nil {
		c.DayStartHour = *o.DayStartHour
	}
	if o.DayEndHour != nil {
		c.DayEndHour = *o.DayEndHour
	}
	if o.LectureSessionLength != nil {
		c.LectureSessionLength = *o.LectureSessionLength
	}
	if o.SeminarSessionLength != nil {
		c.SeminarSessionLength = *o.SeminarSessionLength
	}
	if o.PreferredStartHour != nil {
		c.PreferredStartHour = *o.PreferredStartHour
	}
	if o.PreferredEndHour != nil {
		c.PreferredEndHour = *o.PreferredEndHour
	}
	if o.MaxEndHour != nil {
		c.MaxEndHour = *o.MaxEndHour
	}
	if o.MaxTeacherHoursPerDay != nil {
		c.MaxTeacherHoursPerDay = *o.MaxTeacherHoursPerDay
	}
	if o.LargeClassThreshold != nil {
		c.LargeClassThreshold = *o.LargeClassThreshold
	}
	if o.AvoidBackToBackSessions != nil {
		c.AvoidBackToBackSessions = *o.AvoidBackToBackSessions
	}
	if o.UseAuditoriumsForLargeClasses != nil {
		c.UseAuditoriumsForLargeClasses = *o.UseAuditoriumsForLargeClasses
	}
	if o.AvoidSplittingSessions != nil {
		c.AvoidSplittingSessions = *o.AvoidSplittingSessions
	}
	if o.PrioritizeMorningLectures != nil {
		c.PrioritizeMorningLectures = *o.PrioritizeMorningLectures
	}
	if o.GroupSameCourseClasses != nil {
		c.GroupSameCourseClasses = *o.GroupSameCourseClasses
	}
	if o.DistributeEvenlyAcrossWeek != nil {
		c.DistributeEvenlyAcrossWeek = *o.DistributeEvenlyAcrossWeek
	}
	return c
}

// GenerateScheduleRequest instructs the engine to build a schedule from the
// current entity snapshot.
type GenerateScheduleRequest struct {
	Name        string               `json:"name" validate:"omitempty,max=120"`
	Constraints *ConstraintOverrides `json:"constraints" validate:"omitempty"`
}

// OptimizeScheduleRequest asks for an optimizer pass over a stored schedule.
// WeightAdjustments maps soft-weight names (snake form, e.g. "day_balance")
// to multipliers applied on the stock weights, refine mode only.
type OptimizeScheduleRequest struct {
	Mode              models.OptimizeMode `json:"mode" validate:"required"`
	TargetConflicts   []string            `json:"targetConflicts" validate:"omitempty,dive,min=1"`
	WeightAdjustments map[string]float64  `json:"weightAdjustments" validate:"omitempty,dive,min=0"`
}

// TimetableDay is one weekday column of a timetable view.
type TimetableDay struct {
	Day      int                      `json:"day"`
	DayName  string                   `json:"dayName"`
	Sessions []models.ScheduleSession `json:"sessions"`
}

// TimetableResponse is a schedule narrowed to one scope and arranged by
// weekday.
type TimetableResponse struct {
	ScheduleID string                `json:"scheduleId"`
	Scope      models.TimetableScope `json:"scope"`
	TargetID   string                `json:"targetId,omitempty"`
	Days       []TimetableDay        `json:"days"`
}
