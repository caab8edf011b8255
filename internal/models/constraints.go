package models

// ScheduleConstraints is the flat configuration object steering a generation
// run. Hour fields are 24h clock integers.
type ScheduleConstraints struct {
	DayStartHour          int `json:"day_start_hour"`
	DayEndHour            int `json:"day_end_hour"`
	LectureSessionLength  int `json:"lecture_session_length"`
	SeminarSessionLength  int `json:"seminar_session_length"`
	PreferredStartHour    int `json:"preferred_start_hour"`
	PreferredEndHour      int `json:"preferred_end_hour"`
	MaxEndHour            int `json:"max_end_hour"`
	MaxTeacherHoursPerDay int `json:"max_teacher_hours_per_day"`
	LargeClassThreshold   int `json:"large_class_threshold"`

	AvoidBackToBackSessions       bool `json:"avoid_back_to_back_sessions"`
	UseAuditoriumsForLargeClasses bool `json:"use_auditoriums_for_large_classes"`
	AvoidSplittingSessions        bool `json:"avoid_splitting_sessions"`
	PrioritizeMorningLectures     bool `json:"prioritize_morning_lectures"`
	GroupSameCourseClasses        bool `json:"group_same_course_classes"`
	DistributeEvenlyAcrossWeek    bool `json:"distribute_evenly_across_week"`
}

// DefaultScheduleConstraints returns the stock constraint set: a 9 to 17
// teaching day in two hour sessions with a 9 to 15 preferred window.
func DefaultScheduleConstraints() ScheduleConstraints {
	return ScheduleConstraints{
		DayStartHour:          9,
		DayEndHour:            17,
		LectureSessionLength:  2,
		SeminarSessionLength:  2,
		PreferredStartHour:    9,
		PreferredEndHour:      15,
		MaxEndHour:            17,
		MaxTeacherHoursPerDay: 6,
		LargeClassThreshold:   30,
	}
}

// SessionLength returns the configured session length for the given type.
func (c ScheduleConstraints) SessionLength(t SessionType) int {
	if t == SessionSeminar {
		return c.SeminarSessionLength
	}
	return c.LectureSessionLength
}
