package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// envelope mirrors the API response wrapper so a saved GET /schedules/{id}
// body can be fed in unmodified.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

type sessionMove struct {
	Before models.ScheduleSession
	After  models.ScheduleSession
}

type sessionDiff struct {
	Moved     []sessionMove
	Added     []models.ScheduleSession
	Removed   []models.ScheduleSession
	Unchanged int
}

type conflictDiff struct {
	Resolved   []models.ScheduleConflict
	Introduced []models.ScheduleConflict
}

func main() {
	var (
		beforePath string
		afterPath  string
	)

	flag.StringVar(&beforePath, "before", "", "Path to the baseline schedule JSON")
	flag.StringVar(&afterPath, "after", "", "Path to the schedule JSON compared against the baseline")
	flag.Parse()

	if beforePath == "" || afterPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	before, err := loadSchedule(beforePath)
	if err != nil {
		log.Fatalf("failed to load baseline: %v", err)
	}
	after, err := loadSchedule(afterPath)
	if err != nil {
		log.Fatalf("failed to load comparison: %v", err)
	}

	sessions := diffSessions(before.Sessions, after.Sessions)
	conflicts := diffConflicts(before.Conflicts, after.Conflicts)

	printReport(before, after, sessions, conflicts)

	introducedCritical := 0
	for _, c := range conflicts.Introduced {
		if c.Severity == models.SeverityCritical {
			introducedCritical++
		}
	}
	fmt.Printf("Introduced critical conflicts: %d\n", introducedCritical)
	if introducedCritical > 0 {
		os.Exit(1)
	}
}

func loadSchedule(path string) (*models.GeneratedSchedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Data) > 0 {
		data = env.Data
	}
	var schedule models.GeneratedSchedule
	if err := json.Unmarshal(data, &schedule); err != nil {
		return nil, err
	}
	if schedule.ID == "" && len(schedule.Sessions) == 0 {
		return nil, fmt.Errorf("no schedule payload in %s", path)
	}
	return &schedule, nil
}

// sessionKey groups sessions teaching the same class/course side. Slots
// within a group are paired positionally in week order.
func sessionKey(s models.ScheduleSession) string {
	return s.ClassID + "|" + s.CourseID + "|" + string(s.Type)
}

func sessionLabel(s models.ScheduleSession) string {
	return fmt.Sprintf("%s %s %s", s.ClassName, s.CourseName, s.Type)
}

func slotLabel(s models.ScheduleSession) string {
	label := s.TimeSlot.String()
	if s.RoomName != "" {
		label += " @ " + s.RoomName
	}
	if s.TeacherName != "" {
		label += " (" + s.TeacherName + ")"
	}
	return label
}

func diffSessions(before, after []models.ScheduleSession) sessionDiff {
	beforeGroups := groupSessions(before)
	afterGroups := groupSessions(after)

	keys := make([]string, 0, len(beforeGroups))
	seen := make(map[string]bool, len(beforeGroups))
	for key := range beforeGroups {
		keys = append(keys, key)
		seen[key] = true
	}
	for key := range afterGroups {
		if !seen[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var diff sessionDiff
	for _, key := range keys {
		b := beforeGroups[key]
		a := afterGroups[key]
		n := len(b)
		if len(a) < n {
			n = len(a)
		}
		for i := 0; i < n; i++ {
			if sameSlot(b[i], a[i]) {
				diff.Unchanged++
			} else {
				diff.Moved = append(diff.Moved, sessionMove{Before: b[i], After: a[i]})
			}
		}
		diff.Removed = append(diff.Removed, b[n:]...)
		diff.Added = append(diff.Added, a[n:]...)
	}
	return diff
}

func groupSessions(sessions []models.ScheduleSession) map[string][]models.ScheduleSession {
	grouped := make(map[string][]models.ScheduleSession)
	for _, s := range sessions {
		key := sessionKey(s)
		grouped[key] = append(grouped[key], s)
	}
	for _, list := range grouped {
		sort.Slice(list, func(i, j int) bool {
			if list[i].Day != list[j].Day {
				return list[i].Day < list[j].Day
			}
			return list[i].StartHour < list[j].StartHour
		})
	}
	return grouped
}

func sameSlot(a, b models.ScheduleSession) bool {
	return a.Day == b.Day &&
		a.StartHour == b.StartHour &&
		a.DurationHours == b.DurationHours &&
		a.RoomID == b.RoomID &&
		a.TeacherID == b.TeacherID
}

func diffConflicts(before, after []models.ScheduleConflict) conflictDiff {
	beforeByMessage := make(map[string]models.ScheduleConflict, len(before))
	for _, c := range before {
		beforeByMessage[c.Message] = c
	}
	afterByMessage := make(map[string]models.ScheduleConflict, len(after))
	for _, c := range after {
		afterByMessage[c.Message] = c
	}

	var diff conflictDiff
	for _, c := range before {
		if _, still := afterByMessage[c.Message]; !still {
			diff.Resolved = append(diff.Resolved, c)
		}
	}
	for _, c := range after {
		if _, was := beforeByMessage[c.Message]; !was {
			diff.Introduced = append(diff.Introduced, c)
		}
	}
	return diff
}

func printReport(before, after *models.GeneratedSchedule, sessions sessionDiff, conflicts conflictDiff) {
	fmt.Println("Schedule Diff Report")
	fmt.Println("====================")
	fmt.Printf("Before: %s (score %.2f, %d sessions, %d conflicts)\n", before.Name, before.Score, len(before.Sessions), len(before.Conflicts))
	fmt.Printf("After:  %s (score %.2f, %d sessions, %d conflicts)\n", after.Name, after.Score, len(after.Sessions), len(after.Conflicts))
	fmt.Printf("Score delta: %+.2f\n", after.Score-before.Score)
	fmt.Println()

	fmt.Printf("Sessions: %d moved, %d added, %d removed, %d unchanged\n", len(sessions.Moved), len(sessions.Added), len(sessions.Removed), sessions.Unchanged)
	for _, move := range sessions.Moved {
		fmt.Printf("  [MOVED] %s: %s -> %s\n", sessionLabel(move.Before), slotLabel(move.Before), slotLabel(move.After))
	}
	for _, s := range sessions.Added {
		fmt.Printf("  [ADDED] %s: %s\n", sessionLabel(s), slotLabel(s))
	}
	for _, s := range sessions.Removed {
		fmt.Printf("  [REMOVED] %s: %s\n", sessionLabel(s), slotLabel(s))
	}
	fmt.Println()

	fmt.Printf("Conflicts: %d resolved, %d introduced\n", len(conflicts.Resolved), len(conflicts.Introduced))
	for _, c := range conflicts.Resolved {
		fmt.Printf("  [RESOLVED] (%s) %s\n", c.Severity, c.Message)
	}
	for _, c := range conflicts.Introduced {
		fmt.Printf("  [INTRODUCED] (%s) %s\n", c.Severity, c.Message)
	}
}
