package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// SoftWeights tunes the soft-constraint ranking of placement candidates.
// Larger values push harder. Hard constraints are never weighted, a candidate
// violating one is discarded outright.
type SoftWeights struct {
	PreferredWindow float64 `json:"preferred_window"`
	WindowDistance  float64 `json:"window_distance"`
	MaxEndOverrun   float64 `json:"max_end_overrun"`
	TeacherOverload float64 `json:"teacher_overload"`
	BackToBack      float64 `json:"back_to_back"`
	DayBalance      float64 `json:"day_balance"`
	MorningLecture  float64 `json:"morning_lecture"`
}

// DefaultSoftWeights returns the stock ranking weights.
func DefaultSoftWeights() SoftWeights {
	return SoftWeights{
		PreferredWindow: 10,
		WindowDistance:  2,
		MaxEndOverrun:   8,
		TeacherOverload: 6,
		BackToBack:      4,
		DayBalance:      3,
		MorningLecture:  5,
	}
}

// placementFailure records one required session no admissible tuple existed
// for. Failures surface as critical conflicts, never as silently dropped
// requirements.
type placementFailure struct {
	ClassID  string
	CourseID string
	Type     models.SessionType
	Index    int
}

// groupKey identifies the joinable physical event for one session index of a
// course side. Classes merging on the same key attend the same event.
type groupKey struct {
	CourseID string
	Type     models.SessionType
	Index    int
}

type groupInfo struct {
	Slot      models.TimeSlot
	RoomID    string
	TeacherID string
	RoomCap   int
	Size      int
	groupID   *string
	memberIdx []int
}

// allocator carries the mutable state of one placement run. It is built
// fresh per Generate call and never shared.
type allocator struct {
	snap    *Snapshot
	grid    slotGrid
	weights SoftWeights

	sessions []models.ScheduleSession
	failures []placementFailure

	teacherBusy map[string][]models.TimeSlot
	roomBusy    map[string][]models.TimeSlot
	classBusy   map[string][]models.TimeSlot

	teacherHours map[string]map[int]int
	classPerDay  map[string]map[int]int

	groups   map[groupKey]*groupInfo
	groupSeq int
}

func newAllocator(snap *Snapshot, weights SoftWeights) *allocator {
	return &allocator{
		snap:         snap,
		grid:         newSlotGrid(snap.Constraints),
		weights:      weights,
		teacherBusy:  make(map[string][]models.TimeSlot),
		roomBusy:     make(map[string][]models.TimeSlot),
		classBusy:    make(map[string][]models.TimeSlot),
		teacherHours: make(map[string]map[int]int),
		classPerDay:  make(map[string]map[int]int),
		groups:       make(map[groupKey]*groupInfo),
	}
}

// run places every required session not already covered by pinned sessions.
// Requirements are visited in derivation order, so identical snapshots always
// produce identical output.
func (a *allocator) run(required []requiredSession, pinned []models.ScheduleSession) {
	remaining := a.pin(required, pinned)

	for _, req := range remaining {
		if a.snap.Constraints.GroupSameCourseClasses && a.tryMerge(req) {
			continue
		}
		a.place(req)
	}
}

// pin seeds the allocator with already-fixed sessions and returns the
// requirements the pinned set does not cover. For each (class, course, type)
// the lowest indexes are considered covered first.
func (a *allocator) pin(required []requiredSession, pinned []models.ScheduleSession) []requiredSession {
	if len(pinned) == 0 {
		return required
	}

	type tripleKey struct {
		ClassID  string
		CourseID string
		Type     models.SessionType
	}
	covered := make(map[tripleKey]int, len(pinned))
	seenGroups := make(map[string]struct{})

	for _, s := range pinned {
		idx := len(a.sessions)
		a.sessions = append(a.sessions, s)
		covered[tripleKey{s.ClassID, s.CourseID, s.Type}]++

		a.classBusy[s.ClassID] = append(a.classBusy[s.ClassID], s.TimeSlot)
		a.bumpClassDay(s.ClassID, s.Day, 1)

		// Group members share one physical event, book the teacher and
		// room only once per group.
		if s.GroupID != nil {
			if _, dup := seenGroups[*s.GroupID]; dup {
				a.joinPinnedGroup(s, idx)
				continue
			}
			seenGroups[*s.GroupID] = struct{}{}
		}
		a.teacherBusy[s.TeacherID] = append(a.teacherBusy[s.TeacherID], s.TimeSlot)
		a.roomBusy[s.RoomID] = append(a.roomBusy[s.RoomID], s.TimeSlot)
		a.bumpTeacherHours(s.TeacherID, s.Day, s.DurationHours)
		a.registerPinnedGroup(s, idx)
	}

	var remaining []requiredSession
	for _, req := range required {
		key := tripleKey{req.ClassID, req.CourseID, req.Type}
		if covered[key] > 0 {
			covered[key]--
			continue
		}
		remaining = append(remaining, req)
	}
	return remaining
}

// registerPinnedGroup makes a pinned session joinable for later merges. The
// session index is recovered from the id suffix, foreign ids are skipped.
func (a *allocator) registerPinnedGroup(s models.ScheduleSession, idx int) {
	index, ok := sessionIndex(s.ID)
	if !ok {
		return
	}
	room, ok := a.snap.Room(s.RoomID)
	if !ok {
		return
	}
	class, _ := a.snap.Class(s.ClassID)
	a.groups[groupKey{CourseID: s.CourseID, Type: s.Type, Index: index}] = &groupInfo{
		Slot:      s.TimeSlot,
		RoomID:    s.RoomID,
		TeacherID: s.TeacherID,
		RoomCap:   room.Capacity,
		Size:      class.StudentCount,
		groupID:   s.GroupID,
		memberIdx: []int{idx},
	}
}

func (a *allocator) joinPinnedGroup(s models.ScheduleSession, idx int) {
	index, ok := sessionIndex(s.ID)
	if !ok {
		return
	}
	info, ok := a.groups[groupKey{CourseID: s.CourseID, Type: s.Type, Index: index}]
	if !ok {
		return
	}
	class, _ := a.snap.Class(s.ClassID)
	info.Size += class.StudentCount
	info.memberIdx = append(info.memberIdx, idx)
}

// tryMerge joins the class onto an existing session of the same course side
// when the slot is open for the class and the room still fits the combined
// size. A merge emits a linked session record sharing the group id instead of
// occupying a fresh tuple.
func (a *allocator) tryMerge(req requiredSession) bool {
	info, ok := a.groups[groupKey{CourseID: req.CourseID, Type: req.Type, Index: req.Index}]
	if !ok {
		return false
	}
	class, ok := a.snap.Class(req.ClassID)
	if !ok {
		return false
	}
	if !a.free(a.classBusy[req.ClassID], info.Slot) {
		return false
	}
	if info.RoomCap < info.Size+class.StudentCount {
		return false
	}

	if info.groupID == nil {
		id := fmt.Sprintf("grp:%d", a.groupSeq+1)
		a.groupSeq++
		info.groupID = &id
		for _, i := range info.memberIdx {
			a.sessions[i].GroupID = &id
		}
	}

	session := a.buildSession(req, info.Slot, info.RoomID, info.TeacherID)
	session.GroupID = info.groupID
	idx := len(a.sessions)
	a.sessions = append(a.sessions, session)

	info.Size += class.StudentCount
	info.memberIdx = append(info.memberIdx, idx)
	a.classBusy[req.ClassID] = append(a.classBusy[req.ClassID], info.Slot)
	a.bumpClassDay(req.ClassID, info.Slot.Day, 1)
	return true
}

// place runs the candidate sweep for one required session. Candidates are
// enumerated day, start hour, room, teacher, all ascending, and the first
// best-scoring admissible tuple wins, which fixes the tie-break order.
func (a *allocator) place(req requiredSession) {
	class, ok := a.snap.Class(req.ClassID)
	if !ok {
		a.fail(req)
		return
	}
	teachers := a.snap.EligibleTeachers(req.CourseID, req.Type)
	rooms := a.snap.EligibleRooms(req.Type, class.StudentCount)
	if len(teachers) == 0 || len(rooms) == 0 {
		a.fail(req)
		return
	}

	starts := a.grid.starts(req.Type)

	var (
		found    bool
		best     float64
		bestSlot models.TimeSlot
		bestRoom models.Room
		bestT    models.Teacher
	)
	for day := 1; day <= models.DaysPerWeek; day++ {
		for _, start := range starts {
			slot := models.TimeSlot{Day: day, StartHour: start, DurationHours: req.Duration}
			if !a.free(a.classBusy[req.ClassID], slot) {
				continue
			}
			for _, room := range rooms {
				if !a.free(a.roomBusy[room.ID], slot) {
					continue
				}
				for _, teacher := range teachers {
					if !a.free(a.teacherBusy[teacher.ID], slot) {
						continue
					}
					score := a.softScore(req, slot, teacher.ID)
					if !found || score > best {
						found = true
						best = score
						bestSlot = slot
						bestRoom = room
						bestT = teacher
					}
				}
			}
		}
	}
	if !found {
		a.fail(req)
		return
	}

	session := a.buildSession(req, bestSlot, bestRoom.ID, bestT.ID)
	idx := len(a.sessions)
	a.sessions = append(a.sessions, session)

	a.teacherBusy[bestT.ID] = append(a.teacherBusy[bestT.ID], bestSlot)
	a.roomBusy[bestRoom.ID] = append(a.roomBusy[bestRoom.ID], bestSlot)
	a.classBusy[req.ClassID] = append(a.classBusy[req.ClassID], bestSlot)
	a.bumpTeacherHours(bestT.ID, bestSlot.Day, bestSlot.DurationHours)
	a.bumpClassDay(req.ClassID, bestSlot.Day, 1)

	if a.snap.Constraints.GroupSameCourseClasses {
		a.groups[groupKey{CourseID: req.CourseID, Type: req.Type, Index: req.Index}] = &groupInfo{
			Slot:      bestSlot,
			RoomID:    bestRoom.ID,
			TeacherID: bestT.ID,
			RoomCap:   bestRoom.Capacity,
			Size:      class.StudentCount,
			memberIdx: []int{idx},
		}
	}
}

// softScore ranks one admissible candidate. Only soft preferences score,
// availability was already settled by the hard filters.
func (a *allocator) softScore(req requiredSession, slot models.TimeSlot, teacherID string) float64 {
	c := a.snap.Constraints
	w := a.weights
	score := 0.0

	if slot.StartHour >= c.PreferredStartHour && slot.EndHour() <= c.PreferredEndHour {
		score += w.PreferredWindow
	} else {
		distance := 0
		if slot.StartHour < c.PreferredStartHour {
			distance += c.PreferredStartHour - slot.StartHour
		}
		if slot.EndHour() > c.PreferredEndHour {
			distance += slot.EndHour() - c.PreferredEndHour
		}
		score -= w.WindowDistance * float64(distance)
	}

	if slot.EndHour() > c.MaxEndHour {
		score -= w.MaxEndOverrun * float64(slot.EndHour()-c.MaxEndHour)
	}

	if c.MaxTeacherHoursPerDay > 0 {
		loaded := a.teacherHours[teacherID][slot.Day] + slot.DurationHours
		if loaded > c.MaxTeacherHoursPerDay {
			score -= w.TeacherOverload * float64(loaded-c.MaxTeacherHoursPerDay)
		}
	}

	if c.AvoidBackToBackSessions {
		for _, busy := range a.teacherBusy[teacherID] {
			if busy.Adjacent(slot) {
				score -= w.BackToBack
				break
			}
		}
	}

	if c.DistributeEvenlyAcrossWeek {
		score -= w.DayBalance * float64(a.classPerDay[req.ClassID][slot.Day])
	}

	if c.PrioritizeMorningLectures && req.Type == models.SessionLecture && slot.StartHour < noonHour {
		score += w.MorningLecture
	}

	return score
}

func (a *allocator) buildSession(req requiredSession, slot models.TimeSlot, roomID, teacherID string) models.ScheduleSession {
	session := models.ScheduleSession{
		ID:        fmt.Sprintf("%s:%s:%s:%d", req.ClassID, req.CourseID, req.Type, req.Index),
		ClassID:   req.ClassID,
		CourseID:  req.CourseID,
		TeacherID: teacherID,
		RoomID:    roomID,
		Type:      req.Type,
		TimeSlot:  slot,
	}
	if class, ok := a.snap.Class(req.ClassID); ok {
		session.ClassName = class.Name
	}
	if course, ok := a.snap.Course(req.CourseID); ok {
		session.CourseName = course.Name
	}
	if teacher, ok := a.snap.Teacher(teacherID); ok {
		session.TeacherName = teacher.Name
	}
	if room, ok := a.snap.Room(roomID); ok {
		session.RoomName = room.Name
	}
	return session
}

func (a *allocator) fail(req requiredSession) {
	a.failures = append(a.failures, placementFailure{
		ClassID:  req.ClassID,
		CourseID: req.CourseID,
		Type:     req.Type,
		Index:    req.Index,
	})
}

func (a *allocator) free(busy []models.TimeSlot, slot models.TimeSlot) bool {
	for _, b := range busy {
		if b.Overlaps(slot) {
			return false
		}
	}
	return true
}

func (a *allocator) bumpTeacherHours(teacherID string, day, hours int) {
	if a.teacherHours[teacherID] == nil {
		a.teacherHours[teacherID] = make(map[int]int)
	}
	a.teacherHours[teacherID][day] += hours
}

func (a *allocator) bumpClassDay(classID string, day, delta int) {
	if a.classPerDay[classID] == nil {
		a.classPerDay[classID] = make(map[int]int)
	}
	a.classPerDay[classID][day] += delta
}

// sessionIndex recovers the 1-based session index from a generated session
// id of the form class:course:type:n.
func sessionIndex(id string) (int, bool) {
	i := strings.LastIndexByte(id, ':')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
