package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

func newAssignmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryListJoinsNames(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "course_id", "type", "created_at", "teacher_name", "course_name"}).
		AddRow("a1", "t1", "m1", "lecture", time.Now(), "Alice Deary", "Mathematics")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN teachers t ON t.id = ca.teacher_id")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.CourseAssignmentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Alice Deary", list[0].TeacherName)
	assert.Equal(t, "Mathematics", list[0].CourseName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	lecture := models.SessionLecture
	mock.ExpectQuery(regexp.QuoteMeta("ca.teacher_id = $1 AND ca.course_id = $2 AND ca.type = $3")).
		WithArgs("t1", "m1", lecture).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "course_id", "type", "created_at", "teacher_name", "course_name"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("t1", "m1", lecture).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.CourseAssignmentFilter{
		TeacherID: "t1",
		CourseID:  "m1",
		Type:      &lecture,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpsertReplacesHolder(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (course_id, type) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), "t1", "m1", models.SessionLecture, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := &models.CourseAssignment{TeacherID: "t1", CourseID: "m1", Type: models.SessionLecture}
	require.NoError(t, repo.Upsert(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)
	assert.False(t, assignment.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "course_id", "type", "created_at", "teacher_name", "course_name"}).
		AddRow("a1", "t1", "m1", "lecture", time.Now(), "Alice Deary", "Mathematics").
		AddRow("a2", "t1", "m1", "seminar", time.Now(), "Alice Deary", "Mathematics")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ca.teacher_id = $1")).
		WithArgs("t1").
		WillReturnRows(rows)

	list, err := repo.ListByTeacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_assignments WHERE id = $1")).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
