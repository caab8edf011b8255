package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

func TestSlotStarts(t *testing.T) {
	cases := []struct {
		name     string
		dayStart int
		dayEnd   int
		length   int
		want     []int
	}{
		{name: "stock grid", dayStart: 9, dayEnd: 17, length: 2, want: []int{9, 11, 13, 15}},
		{name: "odd length leaves tail", dayStart: 9, dayEnd: 17, length: 3, want: []int{9, 12}},
		{name: "single slot", dayStart: 8, dayEnd: 10, length: 2, want: []int{8}},
		{name: "session longer than day", dayStart: 9, dayEnd: 10, length: 2, want: nil},
		{name: "zero length", dayStart: 9, dayEnd: 17, length: 0, want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, slotStarts(tc.dayStart, tc.dayEnd, tc.length))
		})
	}
}

func TestSlotGridPerType(t *testing.T) {
	c := models.DefaultScheduleConstraints()
	c.LectureSessionLength = 2
	c.SeminarSessionLength = 3

	grid := newSlotGrid(c)

	assert.Equal(t, []int{9, 11, 13, 15}, grid.starts(models.SessionLecture))
	assert.Equal(t, []int{9, 12}, grid.starts(models.SessionSeminar))
	assert.Equal(t, []int{9, 11, 12, 13, 15}, grid.unionStarts)
	assert.Equal(t, 25, grid.weeklyCells())
}

func TestWeeklyCellsStockConstraints(t *testing.T) {
	grid := newSlotGrid(models.DefaultScheduleConstraints())
	assert.Equal(t, 20, grid.weeklyCells())
}
