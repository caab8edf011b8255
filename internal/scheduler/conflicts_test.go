package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

func slotAt(day, start, duration int) models.TimeSlot {
	return models.TimeSlot{Day: day, StartHour: start, DurationHours: duration}
}

func TestDoubleBookingsSharedTeacher(t *testing.T) {
	sessions := []models.ScheduleSession{
		{ID: "s1", ClassID: "c1", ClassName: "10A", TeacherID: "t1", TeacherName: "Alice Deary", RoomID: "r1", RoomName: "Hall A", TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", ClassID: "c2", ClassName: "10B", TeacherID: "t1", TeacherName: "Alice Deary", RoomID: "r2", RoomName: "Hall B", TimeSlot: slotAt(1, 9, 2)},
	}

	found := doubleBookings(sessions)
	require.Len(t, found, 1)
	assert.Equal(t, models.SeverityCritical, found[0].Severity)
	assert.Equal(t, "double-booking at Mon 09:00-11:00: teacher Alice Deary", found[0].Message)
	assert.Equal(t, []string{"Alice Deary"}, found[0].Affected)
}

func TestDoubleBookingsMultipleSharedEntities(t *testing.T) {
	// One pair sharing teacher, room, and class is still one fact listing
	// every shared name.
	sessions := []models.ScheduleSession{
		{ID: "s1", ClassID: "c1", ClassName: "10A", TeacherID: "t1", TeacherName: "Alice Deary", RoomID: "r1", RoomName: "Hall A", TimeSlot: slotAt(2, 9, 2)},
		{ID: "s2", ClassID: "c1", ClassName: "10A", TeacherID: "t1", TeacherName: "Alice Deary", RoomID: "r1", RoomName: "Hall A", TimeSlot: slotAt(2, 10, 2)},
	}

	found := doubleBookings(sessions)
	require.Len(t, found, 1)
	assert.Equal(t, "double-booking at Tue 10:00-11:00: teacher Alice Deary, room Hall A, class 10A", found[0].Message)
	assert.Equal(t, []string{"Alice Deary", "Hall A", "10A"}, found[0].Affected)
}

func TestDoubleBookingsGroupLinkedExempt(t *testing.T) {
	groupID := "grp:1"
	sessions := []models.ScheduleSession{
		{ID: "s1", ClassID: "c1", TeacherID: "t1", RoomID: "r1", GroupID: &groupID, TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", ClassID: "c2", TeacherID: "t1", RoomID: "r1", GroupID: &groupID, TimeSlot: slotAt(1, 9, 2)},
	}

	assert.Empty(t, doubleBookings(sessions), "linked sessions are one physical event")
}

func TestDoubleBookingsDifferentDays(t *testing.T) {
	sessions := []models.ScheduleSession{
		{ID: "s1", ClassID: "c1", TeacherID: "t1", RoomID: "r1", TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", ClassID: "c1", TeacherID: "t1", RoomID: "r1", TimeSlot: slotAt(2, 9, 2)},
	}

	assert.Empty(t, doubleBookings(sessions))
}

func TestTeacherOverloads(t *testing.T) {
	snap := mustSnapshot(t, validInput())

	sessions := []models.ScheduleSession{
		{ID: "s1", TeacherID: "t1", TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", TeacherID: "t1", TimeSlot: slotAt(1, 11, 2)},
		{ID: "s3", TeacherID: "t1", TimeSlot: slotAt(1, 13, 2)},
		{ID: "s4", TeacherID: "t1", TimeSlot: slotAt(1, 15, 2)},
	}

	found := teacherOverloads(snap, sessions)
	require.Len(t, found, 1)
	assert.Equal(t, models.SeverityWarning, found[0].Severity)
	assert.Equal(t, "teacher Alice Deary has 8h on Mon, exceeding the 6h daily limit", found[0].Message)
	assert.Equal(t, []string{"Alice Deary"}, found[0].Affected)
}

func TestTeacherOverloadsCountsGroupsOnce(t *testing.T) {
	snap := mustSnapshot(t, validInput())

	groupID := "grp:1"
	sessions := []models.ScheduleSession{
		{ID: "s1", TeacherID: "t1", GroupID: &groupID, TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", TeacherID: "t1", GroupID: &groupID, TimeSlot: slotAt(1, 9, 2)},
		{ID: "s3", TeacherID: "t1", GroupID: &groupID, TimeSlot: slotAt(1, 9, 2)},
		{ID: "s4", TeacherID: "t1", TimeSlot: slotAt(1, 11, 2)},
	}

	assert.Empty(t, teacherOverloads(snap, sessions), "a grouped event is 2h, not 6h")
}

func TestUnmetRequirements(t *testing.T) {
	snap := mustSnapshot(t, validInput())

	found := unmetRequirements(snap, []placementFailure{
		{ClassID: "c1", CourseID: "m1", Type: models.SessionLecture, Index: 1},
	})
	require.Len(t, found, 1)
	assert.Equal(t, models.SeverityCritical, found[0].Severity)
	assert.Equal(t, "insufficient resources to schedule Math for 10A", found[0].Message)
	assert.Equal(t, []string{"10A", "Math"}, found[0].Affected)
}

func TestRoomMismatches(t *testing.T) {
	snap := mustSnapshot(t, validInput())

	sessions := []models.ScheduleSession{
		{ID: "s1", CourseName: "Math", Type: models.SessionSeminar, RoomID: "r1", TimeSlot: slotAt(1, 9, 2)},
		{ID: "s2", CourseName: "Math", Type: models.SessionLecture, RoomID: "r1", TimeSlot: slotAt(1, 11, 2)},
	}

	found := roomMismatches(snap, sessions)
	require.Len(t, found, 1)
	assert.Equal(t, models.SeverityCritical, found[0].Severity)
	assert.Equal(t, "seminar session of Math placed in lecture room Hall A", found[0].Message)
	assert.Equal(t, []string{"Hall A", "Math"}, found[0].Affected)
}

func TestOverlapWindowPartialOverlap(t *testing.T) {
	a := slotAt(3, 9, 3)
	b := slotAt(3, 11, 2)
	assert.Equal(t, "Wed 11:00-12:00", overlapWindow(a, b))
}
