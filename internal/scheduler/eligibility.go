package scheduler

import (
	"sort"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// EligibleTeachers returns the teachers qualified for a (course, type) pair.
// Qualification is explicit: only an existing assignment makes a teacher
// eligible, nothing is inferred. Results are ordered by teacher id.
func (s *Snapshot) EligibleTeachers(courseID string, t models.SessionType) []models.Teacher {
	var eligible []models.Teacher
	if id, ok := s.holder[assignmentKey{CourseID: courseID, Type: t}]; ok {
		if teacher, found := s.Teacher(id); found {
			eligible = append(eligible, teacher)
		}
	}
	return eligible
}

// EligibleRooms returns rooms able to host a session of the given type,
// ordered by room id. Cross-type substitution is never allowed. When large
// classes are steered into big rooms and classSize exceeds the threshold,
// candidates narrow to rooms with sufficient capacity, falling back to all
// rooms of the type when none is big enough.
func (s *Snapshot) EligibleRooms(t models.SessionType, classSize int) []models.Room {
	var typed []models.Room
	for _, room := range s.Rooms {
		if room.Type == t {
			typed = append(typed, room)
		}
	}
	sort.Slice(typed, func(i, j int) bool { return typed[i].ID < typed[j].ID })

	c := s.Constraints
	if !c.UseAuditoriumsForLargeClasses || classSize <= c.LargeClassThreshold {
		return typed
	}

	var roomy []models.Room
	for _, room := range typed {
		if room.Capacity >= classSize {
			roomy = append(roomy, room)
		}
	}
	if len(roomy) == 0 {
		return typed
	}
	return roomy
}
