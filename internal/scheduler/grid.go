package scheduler

import (
	"sort"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// slotGrid holds the valid start hours per session type. With the stock
// constraints (9 to 17 day, 2h sessions) both types share the grid
// {9, 11, 13, 15}. Diverging session lengths give each type its own grid,
// which is why occupancy checks work on hour ranges instead of slot equality.
type slotGrid struct {
	lectureStarts []int
	seminarStarts []int
	unionStarts   []int
}

func newSlotGrid(c models.ScheduleConstraints) slotGrid {
	grid := slotGrid{
		lectureStarts: slotStarts(c.DayStartHour, c.DayEndHour, c.LectureSessionLength),
		seminarStarts: slotStarts(c.DayStartHour, c.DayEndHour, c.SeminarSessionLength),
	}

	seen := make(map[int]struct{}, len(grid.lectureStarts)+len(grid.seminarStarts))
	for _, s := range grid.lectureStarts {
		seen[s] = struct{}{}
	}
	for _, s := range grid.seminarStarts {
		seen[s] = struct{}{}
	}
	grid.unionStarts = make([]int, 0, len(seen))
	for s := range seen {
		grid.unionStarts = append(grid.unionStarts, s)
	}
	sort.Ints(grid.unionStarts)

	return grid
}

// starts returns the grid for one session type.
func (g slotGrid) starts(t models.SessionType) []int {
	if t == models.SessionSeminar {
		return g.seminarStarts
	}
	return g.lectureStarts
}

// weeklyCells is the utilization denominator: distinct start hours across
// both grids times the teaching week.
func (g slotGrid) weeklyCells() int {
	return len(g.unionStarts) * models.DaysPerWeek
}

// slotStarts enumerates session start hours from dayStart stepping by the
// session length while the session still ends inside the day.
func slotStarts(dayStart, dayEnd, length int) []int {
	if length <= 0 {
		return nil
	}
	var starts []int
	for start := dayStart; start+length <= dayEnd; start += length {
		starts = append(starts, start)
	}
	return starts
}

// noonHour splits the teaching day into morning and afternoon for the
// morning-lecture preference.
const noonHour = 12
