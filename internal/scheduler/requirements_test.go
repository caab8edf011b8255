package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

func TestExpandHoursFullSessions(t *testing.T) {
	c := models.DefaultScheduleConstraints()

	sessions := expandHours("c1", "m1", models.SessionLecture, 4, c)
	require.Len(t, sessions, 2)
	assert.Equal(t, 1, sessions[0].Index)
	assert.Equal(t, 2, sessions[0].Duration)
	assert.Equal(t, 2, sessions[1].Index)
	assert.Equal(t, 2, sessions[1].Duration)
}

func TestExpandHoursRoundsUp(t *testing.T) {
	c := models.DefaultScheduleConstraints()

	sessions := expandHours("c1", "m1", models.SessionSeminar, 3, c)
	require.Len(t, sessions, 2)
	assert.Equal(t, 2, sessions[0].Duration)
	assert.Equal(t, 2, sessions[1].Duration, "without the splitting flag every session is a full slot")
}

func TestExpandHoursAvoidSplitting(t *testing.T) {
	c := models.DefaultScheduleConstraints()
	c.AvoidSplittingSessions = true

	sessions := expandHours("c1", "m1", models.SessionSeminar, 3, c)
	require.Len(t, sessions, 2)
	assert.Equal(t, 2, sessions[0].Duration)
	assert.Equal(t, 1, sessions[1].Duration, "final session shrinks to the remainder")
}

func TestExpandHoursZeroDemand(t *testing.T) {
	c := models.DefaultScheduleConstraints()
	assert.Empty(t, expandHours("c1", "m1", models.SessionLecture, 0, c))
}

func TestDeriveRequirementsOrder(t *testing.T) {
	snap, err := NewSnapshot(Input{
		Classes: []models.Class{{ID: "c2", Name: "10B"}, {ID: "c1", Name: "10A"}},
		Courses: []models.Course{
			{ID: "m1", Name: "Math", HoursPerWeek: 4, LectureHours: 2, SeminarHours: 2},
			{ID: "m2", Name: "Physics", HoursPerWeek: 2, LectureHours: 2},
		},
		ClassCourses: []models.ClassCourse{
			{ClassID: "c2", CourseID: "m1"},
			{ClassID: "c1", CourseID: "m2"},
			{ClassID: "c1", CourseID: "m1"},
		},
		Constraints: models.DefaultScheduleConstraints(),
	})
	require.NoError(t, err)

	required := deriveRequirements(snap)
	require.Len(t, required, 5)

	// Lectures come first, then seminars, each block ordered by class and
	// course ids.
	assert.Equal(t, requiredSession{ClassID: "c1", CourseID: "m1", Type: models.SessionLecture, Index: 1, Duration: 2}, required[0])
	assert.Equal(t, requiredSession{ClassID: "c1", CourseID: "m2", Type: models.SessionLecture, Index: 1, Duration: 2}, required[1])
	assert.Equal(t, requiredSession{ClassID: "c2", CourseID: "m1", Type: models.SessionLecture, Index: 1, Duration: 2}, required[2])
	assert.Equal(t, requiredSession{ClassID: "c1", CourseID: "m1", Type: models.SessionSeminar, Index: 1, Duration: 2}, required[3])
	assert.Equal(t, requiredSession{ClassID: "c2", CourseID: "m1", Type: models.SessionSeminar, Index: 1, Duration: 2}, required[4])
}
