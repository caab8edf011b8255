package models

import "fmt"

// DaysPerWeek is the length of the teaching week, Monday through Friday.
const DaysPerWeek = 5

// TimeSlot pins a session to a weekday and an hour range. Day is 1-based,
// Monday is 1.
type TimeSlot struct {
	Day           int `db:"day" json:"day"`
	StartHour     int `db:"start_hour" json:"start_hour"`
	DurationHours int `db:"duration_hours" json:"duration_hours"`
}

// EndHour returns the first hour after the slot.
func (t TimeSlot) EndHour() int {
	return t.StartHour + t.DurationHours
}

// Overlaps reports whether two slots share any hour on the same day.
func (t TimeSlot) Overlaps(other TimeSlot) bool {
	if t.Day != other.Day {
		return false
	}
	return t.StartHour < other.EndHour() && other.StartHour < t.EndHour()
}

// Adjacent reports whether the slots touch back-to-back on the same day.
func (t TimeSlot) Adjacent(other TimeSlot) bool {
	if t.Day != other.Day {
		return false
	}
	return t.EndHour() == other.StartHour || other.EndHour() == t.StartHour
}

// String renders the slot as "Mon 09:00-11:00".
func (t TimeSlot) String() string {
	return fmt.Sprintf("%s %02d:00-%02d:00", DayName(t.Day), t.StartHour, t.EndHour())
}

// DayName returns the short weekday label for a 1-based day index.
func DayName(day int) string {
	names := [...]string{"Mon", "Tue", "Wed", "Thu", "Fri"}
	if day < 1 || day > len(names) {
		return fmt.Sprintf("Day%d", day)
	}
	return names[day-1]
}
