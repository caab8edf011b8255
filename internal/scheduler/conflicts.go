package scheduler

import (
	"fmt"
	"strings"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// detectConflicts recomputes the full conflict list from the final session
// set. Nothing is carried over from allocation, so the detector also catches
// collisions introduced by pinned sessions. Each detected fact becomes its
// own entry, a pair sharing several entities yields one entry listing all of
// them.
func detectConflicts(snap *Snapshot, sessions []models.ScheduleSession, failures []placementFailure) models.ConflictList {
	conflicts := models.ConflictList{}
	conflicts = append(conflicts, doubleBookings(sessions)...)
	conflicts = append(conflicts, teacherOverloads(snap, sessions)...)
	conflicts = append(conflicts, unmetRequirements(snap, failures)...)
	conflicts = append(conflicts, roomMismatches(snap, sessions)...)
	return conflicts
}

// doubleBookings flags session pairs overlapping in time while sharing a
// teacher, room, or class. Sessions linked into the same group are one
// physical event, their shared teacher and room are not collisions.
func doubleBookings(sessions []models.ScheduleSession) []models.ScheduleConflict {
	var found []models.ScheduleConflict
	for i := 0; i < len(sessions); i++ {
		for j := i + 1; j < len(sessions); j++ {
			s1, s2 := sessions[i], sessions[j]
			if !s1.TimeSlot.Overlaps(s2.TimeSlot) {
				continue
			}
			linked := s1.GroupID != nil && s2.GroupID != nil && *s1.GroupID == *s2.GroupID

			var shared []string
			var affected []string
			if !linked && s1.TeacherID == s2.TeacherID {
				shared = append(shared, fmt.Sprintf("teacher %s", s1.TeacherName))
				affected = append(affected, s1.TeacherName)
			}
			if !linked && s1.RoomID == s2.RoomID {
				shared = append(shared, fmt.Sprintf("room %s", s1.RoomName))
				affected = append(affected, s1.RoomName)
			}
			if s1.ClassID == s2.ClassID {
				shared = append(shared, fmt.Sprintf("class %s", s1.ClassName))
				affected = append(affected, s1.ClassName)
			}
			if len(shared) == 0 {
				continue
			}

			found = append(found, models.ScheduleConflict{
				Severity: models.SeverityCritical,
				Message:  fmt.Sprintf("double-booking at %s: %s", overlapWindow(s1.TimeSlot, s2.TimeSlot), strings.Join(shared, ", ")),
				Affected: affected,
			})
		}
	}
	return found
}

// teacherOverloads warns when a teacher's total hours on one day exceed the
// configured daily maximum. A group of linked sessions counts once.
func teacherOverloads(snap *Snapshot, sessions []models.ScheduleSession) []models.ScheduleConflict {
	limit := snap.Constraints.MaxTeacherHoursPerDay
	if limit <= 0 {
		return nil
	}

	hours := make(map[string]map[int]int)
	counted := make(map[string]struct{})
	for _, s := range sessions {
		if s.GroupID != nil {
			if _, dup := counted[*s.GroupID]; dup {
				continue
			}
			counted[*s.GroupID] = struct{}{}
		}
		if hours[s.TeacherID] == nil {
			hours[s.TeacherID] = make(map[int]int)
		}
		hours[s.TeacherID][s.Day] += s.DurationHours
	}

	var found []models.ScheduleConflict
	for _, teacher := range snap.Teachers {
		for day := 1; day <= models.DaysPerWeek; day++ {
			total := hours[teacher.ID][day]
			if total <= limit {
				continue
			}
			found = append(found, models.ScheduleConflict{
				Severity: models.SeverityWarning,
				Message:  fmt.Sprintf("teacher %s has %dh on %s, exceeding the %dh daily limit", teacher.Name, total, models.DayName(day), limit),
				Affected: []string{teacher.Name},
			})
		}
	}
	return found
}

// unmetRequirements converts placement failures into critical conflicts so
// unschedulable demand is reported instead of silently dropped.
func unmetRequirements(snap *Snapshot, failures []placementFailure) []models.ScheduleConflict {
	var found []models.ScheduleConflict
	for _, f := range failures {
		className, courseName := f.ClassID, f.CourseID
		if class, ok := snap.Class(f.ClassID); ok {
			className = class.Name
		}
		if course, ok := snap.Course(f.CourseID); ok {
			courseName = course.Name
		}
		found = append(found, models.ScheduleConflict{
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("insufficient resources to schedule %s for %s", courseName, className),
			Affected: []string{className, courseName},
		})
	}
	return found
}

// roomMismatches flags sessions placed in a room of the wrong type. The
// allocator never produces these, pinned input might.
func roomMismatches(snap *Snapshot, sessions []models.ScheduleSession) []models.ScheduleConflict {
	var found []models.ScheduleConflict
	for _, s := range sessions {
		room, ok := snap.Room(s.RoomID)
		if !ok || room.Type == s.Type {
			continue
		}
		found = append(found, models.ScheduleConflict{
			Severity: models.SeverityCritical,
			Message:  fmt.Sprintf("%s session of %s placed in %s room %s", s.Type, s.CourseName, room.Type, room.Name),
			Affected: []string{room.Name, s.CourseName},
		})
	}
	return found
}

// overlapWindow renders the hour range two overlapping slots share.
func overlapWindow(a, b models.TimeSlot) string {
	start := a.StartHour
	if b.StartHour > start {
		start = b.StartHour
	}
	end := a.EndHour()
	if b.EndHour() < end {
		end = b.EndHour()
	}
	return models.TimeSlot{Day: a.Day, StartHour: start, DurationHours: end - start}.String()
}
