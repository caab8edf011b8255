package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

func TestScoreSchedule(t *testing.T) {
	critical := models.ScheduleConflict{Severity: models.SeverityCritical}
	warning := models.ScheduleConflict{Severity: models.SeverityWarning}

	cases := []struct {
		name      string
		conflicts models.ConflictList
		soft      int
		want      float64
	}{
		{name: "clean", conflicts: nil, soft: 0, want: 100},
		{name: "one critical", conflicts: models.ConflictList{critical}, soft: 0, want: 85},
		{name: "one warning", conflicts: models.ConflictList{warning}, soft: 0, want: 95},
		{name: "soft only", conflicts: nil, soft: 3, want: 94},
		{name: "mixed", conflicts: models.ConflictList{critical, warning}, soft: 2, want: 76},
		{name: "floored at zero", conflicts: models.ConflictList{critical, critical, critical, critical, critical, critical, critical}, soft: 0, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, scoreSchedule(tc.conflicts, tc.soft))
		})
	}
}

func TestScoreMonotonicity(t *testing.T) {
	base := models.ConflictList{{Severity: models.SeverityWarning}}
	withExtra := append(models.ConflictList{{Severity: models.SeverityCritical}}, base...)

	assert.Less(t, scoreSchedule(withExtra, 1), scoreSchedule(base, 1))
	assert.LessOrEqual(t, scoreSchedule(base, 2), scoreSchedule(base, 1))
}

func TestCountSoftViolationsWindowAndMaxEnd(t *testing.T) {
	in := validInput()
	in.Constraints.DayEndHour = 19
	in.Constraints.MaxEndHour = 16
	snap := mustSnapshot(t, in)

	sessions := []models.ScheduleSession{
		// Inside the window, ends before max end.
		{ID: "s1", ClassID: "c1", TimeSlot: slotAt(1, 9, 2)},
		// Outside preferred window only.
		{ID: "s2", ClassID: "c1", TimeSlot: slotAt(2, 8, 2)},
		// Outside the window and past max end, counts twice.
		{ID: "s3", ClassID: "c1", TimeSlot: slotAt(3, 15, 2)},
	}

	assert.Equal(t, 3, countSoftViolations(snap, sessions))
}

func TestCountSoftViolationsBackToBack(t *testing.T) {
	in := validInput()
	in.Constraints.AvoidBackToBackSessions = true
	snap := mustSnapshot(t, in)

	sessions := []models.ScheduleSession{
		{ID: "s1", ClassID: "c1", TeacherID: "t1", TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", ClassID: "c1", TeacherID: "t1", TimeSlot: slotAt(1, 11, 2)},
		{ID: "s3", ClassID: "c1", TeacherID: "t9", TimeSlot: slotAt(1, 13, 2)},
	}

	assert.Equal(t, 1, countSoftViolations(snap, sessions), "only the same-teacher adjacency counts")
}

func TestCountSoftViolationsDayImbalance(t *testing.T) {
	in := validInput()
	in.Constraints.DistributeEvenlyAcrossWeek = true
	snap := mustSnapshot(t, in)

	sessions := []models.ScheduleSession{
		{ID: "s1", ClassID: "c1", TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", ClassID: "c1", TimeSlot: slotAt(1, 11, 2)},
		{ID: "s3", ClassID: "c1", TimeSlot: slotAt(1, 13, 2)},
	}

	// Three sessions on Monday against empty days is a spread of three,
	// charged as two violations.
	assert.Equal(t, 2, countSoftViolations(snap, sessions))
}

func TestCountSoftViolationsOffFlagsFree(t *testing.T) {
	snap := mustSnapshot(t, validInput())

	sessions := []models.ScheduleSession{
		{ID: "s1", ClassID: "c1", TeacherID: "t1", TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", ClassID: "c1", TeacherID: "t1", TimeSlot: slotAt(1, 11, 2)},
		{ID: "s3", ClassID: "c1", TeacherID: "t1", TimeSlot: slotAt(1, 13, 2)},
	}

	assert.Zero(t, countSoftViolations(snap, sessions))
}

func TestUtilizationRate(t *testing.T) {
	grid := newSlotGrid(models.DefaultScheduleConstraints())

	sessions := []models.ScheduleSession{
		{ID: "s1", RoomID: "r1", TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", RoomID: "r2", TimeSlot: slotAt(1, 11, 2)},
	}
	assert.Equal(t, 10.0, utilizationRate(grid, sessions))

	assert.Zero(t, utilizationRate(grid, nil))
}

func TestUtilizationRateSharedCellCountsOnce(t *testing.T) {
	grid := newSlotGrid(models.DefaultScheduleConstraints())

	groupID := "grp:1"
	sessions := []models.ScheduleSession{
		{ID: "s1", RoomID: "r1", GroupID: &groupID, TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", RoomID: "r1", GroupID: &groupID, TimeSlot: slotAt(1, 9, 2)},
	}
	assert.Equal(t, 5.0, utilizationRate(grid, sessions))
}

func TestUtilizationRateCapped(t *testing.T) {
	c := models.DefaultScheduleConstraints()
	grid := newSlotGrid(c)

	var sessions []models.ScheduleSession
	for day := 1; day <= models.DaysPerWeek; day++ {
		for _, start := range grid.lectureStarts {
			sessions = append(sessions,
				models.ScheduleSession{RoomID: "r1", TimeSlot: slotAt(day, start, 2)},
				models.ScheduleSession{RoomID: "r2", TimeSlot: slotAt(day, start, 2)},
			)
		}
	}

	assert.Equal(t, 100.0, utilizationRate(grid, sessions), "two fully booked rooms cap at 100")
}
