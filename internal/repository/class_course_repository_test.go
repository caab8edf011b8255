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
)

func newClassCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassCourseRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newClassCourseRepoMock(t)
	defer cleanup()
	repo := NewClassCourseRepository(db)

	rows := sqlmock.NewRows([]string{"class_id", "course_id", "created_at", "course_name", "hours_per_week", "lecture_hours", "seminar_hours"}).
		AddRow("c1", "m1", time.Now(), "Mathematics", 4, 2, 2)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN courses c ON c.id = cc.course_id")).
		WithArgs("c1").
		WillReturnRows(rows)

	links, err := repo.ListByClass(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "Mathematics", links[0].CourseName)
	assert.Equal(t, 4, links[0].HoursPerWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassCourseRepositoryReplaceCourses(t *testing.T) {
	db, mock, cleanup := newClassCourseRepoMock(t)
	defer cleanup()
	repo := NewClassCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_courses WHERE class_id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_courses")).
		WithArgs("c1", "m1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_courses")).
		WithArgs("c1", "m2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceCourses(context.Background(), "c1", []string{"m1", "m2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassCourseRepositoryReplaceCoursesEmptyClears(t *testing.T) {
	db, mock, cleanup := newClassCourseRepoMock(t)
	defer cleanup()
	repo := NewClassCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_courses WHERE class_id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceCourses(context.Background(), "c1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassCourseRepositoryReplaceCoursesRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newClassCourseRepoMock(t)
	defer cleanup()
	repo := NewClassCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM class_courses WHERE class_id = $1")).
		WithArgs("c1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO class_courses")).
		WithArgs("c1", "m1", sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ReplaceCourses(context.Background(), "c1", []string{"m1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert class course")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassCourseRepositoryCountByCourse(t *testing.T) {
	db, mock, cleanup := newClassCourseRepoMock(t)
	defer cleanup()
	repo := NewClassCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM class_courses WHERE course_id = $1")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByCourse(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
