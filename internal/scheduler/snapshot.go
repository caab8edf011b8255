package scheduler

import (
	"fmt"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
	appErrors "github.com/Teo-Te/ClassSync-sub001/pkg/errors"
)

// Input bundles the entity snapshot a generation run consumes.
type Input struct {
	Classes      []models.Class
	Courses      []models.Course
	Teachers     []models.Teacher
	Rooms        []models.Room
	Assignments  []models.CourseAssignment
	ClassCourses []models.ClassCourse
	Constraints  models.ScheduleConstraints
}

// Snapshot is the validated, indexed, read-only input of one run. The engine
// never mutates it, so a caller may share one snapshot across goroutines as
// long as it does not mutate the slices itself.
type Snapshot struct {
	Classes      []models.Class
	Courses      []models.Course
	Teachers     []models.Teacher
	Rooms        []models.Room
	Assignments  []models.CourseAssignment
	ClassCourses []models.ClassCourse
	Constraints  models.ScheduleConstraints

	classIdx   map[string]int
	courseIdx  map[string]int
	teacherIdx map[string]int
	roomIdx    map[string]int
	holder     map[assignmentKey]string
}

type assignmentKey struct {
	CourseID string
	Type     models.SessionType
}

// NewSnapshot validates structural invariants and builds lookup indexes.
// Violations fail the whole call before any allocation happens. Degenerate
// but structurally valid inputs (no rooms of a type, courses without an
// assigned teacher) are accepted and surface later as conflicts.
func NewSnapshot(in Input) (*Snapshot, error) {
	snap := &Snapshot{
		Classes:      in.Classes,
		Courses:      in.Courses,
		Teachers:     in.Teachers,
		Rooms:        in.Rooms,
		Assignments:  in.Assignments,
		ClassCourses: in.ClassCourses,
		Constraints:  in.Constraints,
		classIdx:     make(map[string]int, len(in.Classes)),
		courseIdx:    make(map[string]int, len(in.Courses)),
		teacherIdx:   make(map[string]int, len(in.Teachers)),
		roomIdx:      make(map[string]int, len(in.Rooms)),
		holder:       make(map[assignmentKey]string, len(in.Assignments)),
	}

	for i, class := range in.Classes {
		if class.ID == "" {
			return nil, invalid("class at position %d has no id", i)
		}
		if _, dup := snap.classIdx[class.ID]; dup {
			return nil, invalid("duplicate class id %s", class.ID)
		}
		snap.classIdx[class.ID] = i
	}
	for i, course := range in.Courses {
		if course.ID == "" {
			return nil, invalid("course at position %d has no id", i)
		}
		if _, dup := snap.courseIdx[course.ID]; dup {
			return nil, invalid("duplicate course id %s", course.ID)
		}
		snap.courseIdx[course.ID] = i
	}
	for i, teacher := range in.Teachers {
		if teacher.ID == "" {
			return nil, invalid("teacher at position %d has no id", i)
		}
		if _, dup := snap.teacherIdx[teacher.ID]; dup {
			return nil, invalid("duplicate teacher id %s", teacher.ID)
		}
		snap.teacherIdx[teacher.ID] = i
	}
	for i, room := range in.Rooms {
		if room.ID == "" {
			return nil, invalid("room at position %d has no id", i)
		}
		if _, dup := snap.roomIdx[room.ID]; dup {
			return nil, invalid("duplicate room id %s", room.ID)
		}
		if !room.Type.Valid() {
			return nil, invalid("room %s has unknown type %q", room.ID, room.Type)
		}
		snap.roomIdx[room.ID] = i
	}

	for _, a := range in.Assignments {
		if !a.Type.Valid() {
			return nil, invalid("assignment %s has unknown type %q", a.ID, a.Type)
		}
		if _, ok := snap.teacherIdx[a.TeacherID]; !ok {
			return nil, invalid("assignment %s references unknown teacher %s", a.ID, a.TeacherID)
		}
		if _, ok := snap.courseIdx[a.CourseID]; !ok {
			return nil, invalid("assignment %s references unknown course %s", a.ID, a.CourseID)
		}
		key := assignmentKey{CourseID: a.CourseID, Type: a.Type}
		if held, dup := snap.holder[key]; dup && held != a.TeacherID {
			return nil, invalid("course %s has multiple %s teachers", a.CourseID, a.Type)
		}
		snap.holder[key] = a.TeacherID
	}

	for _, link := range in.ClassCourses {
		if _, ok := snap.classIdx[link.ClassID]; !ok {
			return nil, invalid("class-course link references unknown class %s", link.ClassID)
		}
		if _, ok := snap.courseIdx[link.CourseID]; !ok {
			return nil, invalid("class %s references unknown course %s", link.ClassID, link.CourseID)
		}
	}

	c := in.Constraints
	if c.LectureSessionLength <= 0 || c.SeminarSessionLength <= 0 {
		return nil, invalid("session lengths must be positive")
	}
	if c.DayStartHour < 0 || c.DayEndHour <= c.DayStartHour {
		return nil, invalid("teaching day window %d-%d is invalid", c.DayStartHour, c.DayEndHour)
	}

	return snap, nil
}

// Class returns the class record for an id.
func (s *Snapshot) Class(id string) (models.Class, bool) {
	i, ok := s.classIdx[id]
	if !ok {
		return models.Class{}, false
	}
	return s.Classes[i], true
}

// Course returns the course record for an id.
func (s *Snapshot) Course(id string) (models.Course, bool) {
	i, ok := s.courseIdx[id]
	if !ok {
		return models.Course{}, false
	}
	return s.Courses[i], true
}

// Teacher returns the teacher record for an id.
func (s *Snapshot) Teacher(id string) (models.Teacher, bool) {
	i, ok := s.teacherIdx[id]
	if !ok {
		return models.Teacher{}, false
	}
	return s.Teachers[i], true
}

// Room returns the room record for an id.
func (s *Snapshot) Room(id string) (models.Room, bool) {
	i, ok := s.roomIdx[id]
	if !ok {
		return models.Room{}, false
	}
	return s.Rooms[i], true
}

func invalid(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrInvalidSnapshot, fmt.Sprintf(format, args...))
}
