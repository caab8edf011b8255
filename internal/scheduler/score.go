package scheduler

import (
	"math"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// Score deduction per finding. Critical conflicts dominate, soft violations
// only nudge.
const (
	criticalPenalty = 15
	warningPenalty  = 5
	softPenalty     = 2
)

// scoreSchedule computes the 0-100 quality score from the final conflict
// list and the recounted soft violations. Adding a conflict or violation
// never raises the score.
func scoreSchedule(conflicts models.ConflictList, softViolations int) float64 {
	score := 100.0
	score -= criticalPenalty * float64(conflicts.CountBySeverity(models.SeverityCritical))
	score -= warningPenalty * float64(conflicts.CountBySeverity(models.SeverityWarning))
	score -= softPenalty * float64(softViolations)
	return math.Max(0, score)
}

// countSoftViolations re-derives soft-constraint violations from the final
// session set. The allocator's ranking scores are not reused, pinned or
// merged sessions must count the same as freshly placed ones.
func countSoftViolations(snap *Snapshot, sessions []models.ScheduleSession) int {
	c := snap.Constraints
	violations := 0

	for _, s := range sessions {
		if s.StartHour < c.PreferredStartHour || s.EndHour() > c.PreferredEndHour {
			violations++
		}
		if s.EndHour() > c.MaxEndHour {
			violations++
		}
	}

	if c.AvoidBackToBackSessions {
		events := distinctEvents(sessions)
		for i := 0; i < len(events); i++ {
			for j := i + 1; j < len(events); j++ {
				if events[i].TeacherID != events[j].TeacherID {
					continue
				}
				if events[i].TimeSlot.Adjacent(events[j].TimeSlot) {
					violations++
				}
			}
		}
	}

	if c.DistributeEvenlyAcrossWeek {
		perClass := make(map[string][models.DaysPerWeek + 1]int)
		for _, s := range sessions {
			if s.Day < 1 || s.Day > models.DaysPerWeek {
				continue
			}
			counts := perClass[s.ClassID]
			counts[s.Day]++
			perClass[s.ClassID] = counts
		}
		for _, class := range snap.Classes {
			counts, ok := perClass[class.ID]
			if !ok {
				continue
			}
			min, max := counts[1], counts[1]
			for day := 2; day <= models.DaysPerWeek; day++ {
				if counts[day] < min {
					min = counts[day]
				}
				if counts[day] > max {
					max = counts[day]
				}
			}
			if spread := max - min; spread > 1 {
				violations += spread - 1
			}
		}
	}

	return violations
}

// utilizationRate is the percentage of weekly grid cells holding at least
// one session. Linked sessions occupy their cell once. Heavy multi-room use
// can push the raw ratio past 100, the rate is capped there.
func utilizationRate(grid slotGrid, sessions []models.ScheduleSession) float64 {
	cells := grid.weeklyCells()
	if cells == 0 {
		return 0
	}

	type cellKey struct {
		RoomID    string
		Day       int
		StartHour int
	}
	occupied := make(map[cellKey]struct{}, len(sessions))
	for _, s := range sessions {
		occupied[cellKey{RoomID: s.RoomID, Day: s.Day, StartHour: s.StartHour}] = struct{}{}
	}

	rate := float64(len(occupied)) / float64(cells) * 100
	return math.Min(100, rate)
}

// distinctEvents collapses group-linked sessions into one record per
// physical event.
func distinctEvents(sessions []models.ScheduleSession) []models.ScheduleSession {
	events := make([]models.ScheduleSession, 0, len(sessions))
	seen := make(map[string]struct{})
	for _, s := range sessions {
		if s.GroupID != nil {
			if _, dup := seen[*s.GroupID]; dup {
				continue
			}
			seen[*s.GroupID] = struct{}{}
		}
		events = append(events, s)
	}
	return events
}
