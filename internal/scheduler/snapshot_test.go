package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
)

func validInput() Input {
	return Input{
		Classes:  []models.Class{{ID: "c1", Name: "10A", StudentCount: 25}},
		Courses:  []models.Course{{ID: "m1", Name: "Math", HoursPerWeek: 4, LectureHours: 2, SeminarHours: 2}},
		Teachers: []models.Teacher{{ID: "t1", Name: "Alice Deary"}},
		Rooms: []models.Room{
			{ID: "r1", Name: "Hall A", Type: models.SessionLecture, Capacity: 60},
			{ID: "r2", Name: "Lab 1", Type: models.SessionSeminar, Capacity: 30},
		},
		Assignments: []models.CourseAssignment{
			{ID: "a1", TeacherID: "t1", CourseID: "m1", Type: models.SessionLecture},
			{ID: "a2", TeacherID: "t1", CourseID: "m1", Type: models.SessionSeminar},
		},
		ClassCourses: []models.ClassCourse{{ClassID: "c1", CourseID: "m1"}},
		Constraints:  models.DefaultScheduleConstraints(),
	}
}

func TestNewSnapshotValid(t *testing.T) {
	snap, err := NewSnapshot(validInput())
	require.NoError(t, err)

	class, ok := snap.Class("c1")
	require.True(t, ok)
	assert.Equal(t, "10A", class.Name)

	_, ok = snap.Course("missing")
	assert.False(t, ok)
}

func TestNewSnapshotRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{name: "duplicate class id", mutate: func(in *Input) {
			in.Classes = append(in.Classes, models.Class{ID: "c1", Name: "copy"})
		}},
		{name: "class without id", mutate: func(in *Input) {
			in.Classes = append(in.Classes, models.Class{Name: "no id"})
		}},
		{name: "duplicate course id", mutate: func(in *Input) {
			in.Courses = append(in.Courses, models.Course{ID: "m1"})
		}},
		{name: "duplicate teacher id", mutate: func(in *Input) {
			in.Teachers = append(in.Teachers, models.Teacher{ID: "t1"})
		}},
		{name: "duplicate room id", mutate: func(in *Input) {
			in.Rooms = append(in.Rooms, models.Room{ID: "r1", Type: models.SessionLecture})
		}},
		{name: "room with unknown type", mutate: func(in *Input) {
			in.Rooms = append(in.Rooms, models.Room{ID: "r3", Type: "studio"})
		}},
		{name: "assignment with unknown teacher", mutate: func(in *Input) {
			in.Assignments = append(in.Assignments, models.CourseAssignment{ID: "a3", TeacherID: "ghost", CourseID: "m1", Type: models.SessionLecture})
		}},
		{name: "assignment with unknown course", mutate: func(in *Input) {
			in.Assignments = append(in.Assignments, models.CourseAssignment{ID: "a3", TeacherID: "t1", CourseID: "ghost", Type: models.SessionLecture})
		}},
		{name: "assignment with unknown type", mutate: func(in *Input) {
			in.Assignments = append(in.Assignments, models.CourseAssignment{ID: "a3", TeacherID: "t1", CourseID: "m1", Type: "workshop"})
		}},
		{name: "two teachers on one course side", mutate: func(in *Input) {
			in.Teachers = append(in.Teachers, models.Teacher{ID: "t2", Name: "Bob"})
			in.Assignments = append(in.Assignments, models.CourseAssignment{ID: "a3", TeacherID: "t2", CourseID: "m1", Type: models.SessionLecture})
		}},
		{name: "link to unknown class", mutate: func(in *Input) {
			in.ClassCourses = append(in.ClassCourses, models.ClassCourse{ClassID: "ghost", CourseID: "m1"})
		}},
		{name: "link to unknown course", mutate: func(in *Input) {
			in.ClassCourses = append(in.ClassCourses, models.ClassCourse{ClassID: "c1", CourseID: "ghost"})
		}},
		{name: "non-positive session length", mutate: func(in *Input) {
			in.Constraints.LectureSessionLength = 0
		}},
		{name: "inverted day window", mutate: func(in *Input) {
			in.Constraints.DayStartHour = 17
			in.Constraints.DayEndHour = 9
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			snap, err := NewSnapshot(in)
			require.Error(t, err)
			assert.Nil(t, snap)
			assert.ErrorIs(t, err, appErrors.ErrInvalidSnapshot)
		})
	}
}

func TestNewSnapshotToleratesDegenerateInput(t *testing.T) {
	in := validInput()
	in.Assignments = nil
	in.Rooms = nil

	snap, err := NewSnapshot(in)
	require.NoError(t, err, "missing teachers and rooms surface as conflicts, not input errors")
	assert.Empty(t, snap.EligibleTeachers("m1", models.SessionLecture))
	assert.Empty(t, snap.EligibleRooms(models.SessionLecture, 25))
}

func TestNewSnapshotSameTeacherBothSides(t *testing.T) {
	in := validInput()
	// One teacher holding both sides of a course is a single holder per
	// side, not a duplicate.
	_, err := NewSnapshot(in)
	require.NoError(t, err)
}

func TestEligibleRoomsNarrowsForLargeClasses(t *testing.T) {
	in := validInput()
	in.Rooms = []models.Room{
		{ID: "r1", Name: "Hall A", Type: models.SessionLecture, Capacity: 30},
		{ID: "r2", Name: "Auditorium", Type: models.SessionLecture, Capacity: 120},
		{ID: "r3", Name: "Lab 1", Type: models.SessionSeminar, Capacity: 30},
	}
	in.Constraints.UseAuditoriumsForLargeClasses = true
	in.Constraints.LargeClassThreshold = 30

	snap, err := NewSnapshot(in)
	require.NoError(t, err)

	rooms := snap.EligibleRooms(models.SessionLecture, 90)
	require.Len(t, rooms, 1)
	assert.Equal(t, "r2", rooms[0].ID)

	// Small classes see every room of the type.
	rooms = snap.EligibleRooms(models.SessionLecture, 20)
	assert.Len(t, rooms, 2)
}

func TestEligibleRoomsFallsBackWhenNoneFit(t *testing.T) {
	in := validInput()
	in.Constraints.UseAuditoriumsForLargeClasses = true
	in.Constraints.LargeClassThreshold = 30

	snap, err := NewSnapshot(in)
	require.NoError(t, err)

	rooms := snap.EligibleRooms(models.SessionLecture, 500)
	require.Len(t, rooms, 1, "no room fits, capacity narrowing falls back to all rooms of the type")
	assert.Equal(t, "r1", rooms[0].ID)
}

func TestEligibleTeachersRequiresAssignment(t *testing.T) {
	snap, err := NewSnapshot(validInput())
	require.NoError(t, err)

	lecture := snap.EligibleTeachers("m1", models.SessionLecture)
	require.Len(t, lecture, 1)
	assert.Equal(t, "t1", lecture[0].ID)

	assert.Empty(t, snap.EligibleTeachers("unknown", models.SessionLecture))
}
