package scheduler

import (
	"sort"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// requiredSession is one teaching session a class is owed. Index numbers the
// sessions of a (class, course, type) triple starting at 1.
type requiredSession struct {
	ClassID  string
	CourseID string
	Type     models.SessionType
	Index    int
	Duration int
}

// deriveRequirements expands every class-course link into the sessions needed
// to realize the course's lecture and seminar hours.
//
// Splitting policy: sessions-needed = ceil(hours / sessionLength). Every
// session is a full sessionLength, so a 3h demand with 2h sessions books
// 4 scheduled hours. With AvoidSplittingSessions the final session shrinks to
// the remainder instead, keeping the booked total equal to the demand.
//
// The returned order is the allocator's placement priority: all lectures
// before all seminars, ties by class id, course id, then session index.
func deriveRequirements(snap *Snapshot) []requiredSession {
	var required []requiredSession
	for _, link := range snap.ClassCourses {
		course, ok := snap.Course(link.CourseID)
		if !ok {
			continue
		}
		required = append(required, expandHours(link.ClassID, course.ID, models.SessionLecture, course.LectureHours, snap.Constraints)...)
		required = append(required, expandHours(link.ClassID, course.ID, models.SessionSeminar, course.SeminarHours, snap.Constraints)...)
	}

	sort.SliceStable(required, func(i, j int) bool {
		a, b := required[i], required[j]
		if a.Type != b.Type {
			return a.Type == models.SessionLecture
		}
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		return a.Index < b.Index
	})
	return required
}

func expandHours(classID, courseID string, t models.SessionType, hours int, c models.ScheduleConstraints) []requiredSession {
	if hours <= 0 {
		return nil
	}
	length := c.SessionLength(t)
	count := (hours + length - 1) / length

	sessions := make([]requiredSession, 0, count)
	for i := 1; i <= count; i++ {
		duration := length
		if c.AvoidSplittingSessions && i == count {
			if remainder := hours - (count-1)*length; remainder > 0 {
				duration = remainder
			}
		}
		sessions = append(sessions, requiredSession{
			ClassID:  classID,
			CourseID: courseID,
			Type:     t,
			Index:    i,
			Duration: duration,
		})
	}
	return sessions
}
