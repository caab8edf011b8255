package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func storedSchedule() *models.GeneratedSchedule {
	return &models.GeneratedSchedule{
		ID:   "s1",
		Name: "Autumn draft",
		Sessions: []models.ScheduleSession{
			{
				ID:       "c1:m1:lecture:1",
				ClassID:  "c1",
				CourseID: "m1", TeacherID: "t1", RoomID: "r1",
				Type:        models.SessionLecture,
				TimeSlot:    models.TimeSlot{Day: 1, StartHour: 9, DurationHours: 2},
				ClassName:   "10A",
				CourseName:  "Mathematics",
				TeacherName: "Alice Deary",
				RoomName:    "Hall A",
			},
		},
		Conflicts: models.ConflictList{},
		Score:     100,
		Metadata:  models.ScheduleMetadata{UtilizationRate: 10, GeneratedAt: time.Now().UTC()},
		CreatedAt: time.Now().UTC(),
	}
}

func TestScheduleRepositoryCreateStoresSessionsInTx(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_sessions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), storedSchedule()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreateRollsBackOnSessionFailure(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_sessions")).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), storedSchedule())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert schedule session")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceResult(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedules SET conflicts")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_sessions WHERE schedule_id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_sessions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceResult(context.Background(), storedSchedule()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryList(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "score", "created_at", "session_count", "conflict_count"}).
		AddRow("s1", "Autumn draft", 95.0, time.Now(), 42, 1)
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(jsonb_array_length(s.conflicts), 0) AS conflict_count")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules s WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ScheduleFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 42, list[0].SessionCount)
	assert.Equal(t, 1, list[0].ConflictCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindByIDHydratesSessions(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	scheduleRows := sqlmock.NewRows([]string{"id", "name", "conflicts", "score", "metadata", "created_at"}).
		AddRow("s1", "Autumn draft", []byte(`[{"severity":"warning","message":"w"}]`), 95.0, []byte(`{"utilization_rate":10,"soft_violations":0}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, conflicts, score, metadata, created_at FROM schedules WHERE id = $1")).
		WithArgs("s1").
		WillReturnRows(scheduleRows)

	sessionRows := sqlmock.NewRows([]string{
		"session_id", "class_id", "course_id", "teacher_id", "room_id", "type",
		"day", "start_hour", "duration_hours", "group_id",
		"class_name", "course_name", "teacher_name", "room_name",
	}).AddRow("c1:m1:lecture:1", "c1", "m1", "t1", "r1", "lecture", 1, 9, 2, nil, "10A", "Mathematics", "Alice Deary", "Hall A")
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_sessions")).
		WithArgs("s1").
		WillReturnRows(sessionRows)

	schedule, err := repo.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Autumn draft", schedule.Name)
	require.Len(t, schedule.Sessions, 1)
	assert.Equal(t, "c1:m1:lecture:1", schedule.Sessions[0].ID)
	require.Len(t, schedule.Conflicts, 1)
	assert.Equal(t, models.SeverityWarning, schedule.Conflicts[0].Severity)
	assert.InDelta(t, 10.0, schedule.Metadata.UtilizationRate, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedules WHERE id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
