package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Teo-Te/ClassSync-sub001/internal/models"
)

// ScheduleRepository persists generated schedules and their sessions.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// sessionRow binds a session to its owning schedule for persistence.
type sessionRow struct {
	ScheduleID string `db:"schedule_id"`
	models.ScheduleSession
}

// List returns schedule summaries with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleSummary, int, error) {
	base := "FROM schedules s WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("s.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"name":       "s.name",
		"score":      "s.score",
		"created_at": "s.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT s.id, s.name, s.score, s.created_at,
       (SELECT COUNT(*) FROM schedule_sessions ss WHERE ss.schedule_id = s.id) AS session_count,
       COALESCE(jsonb_array_length(s.conflicts), 0) AS conflict_count
%s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)
	var summaries []models.ScheduleSummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return summaries, total, nil
}

// FindByID loads a schedule with its full session set.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.GeneratedSchedule, error) {
	const query = `SELECT id, name, conflicts, score, metadata, created_at FROM schedules WHERE id = $1`
	var schedule models.GeneratedSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}

	sessions, err := r.ListSessions(ctx, id)
	if err != nil {
		return nil, err
	}
	schedule.Sessions = sessions
	return &schedule, nil
}

// ListSessions returns the sessions of a schedule ordered by day and hour.
func (r *ScheduleRepository) ListSessions(ctx context.Context, scheduleID string) ([]models.ScheduleSession, error) {
	const query = `SELECT session_id, class_id, course_id, teacher_id, room_id, type,
       day, start_hour, duration_hours, group_id,
       class_name, course_name, teacher_name, room_name
FROM schedule_sessions
WHERE schedule_id = $1
ORDER BY day ASC, start_hour ASC, session_id ASC`
	var sessions []models.ScheduleSession
	if err := r.db.SelectContext(ctx, &sessions, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule sessions: %w", err)
	}
	return sessions, nil
}

// Create stores a schedule and its sessions in one transaction.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.GeneratedSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertSchedule = `INSERT INTO schedules (id, name, conflicts, score, metadata, created_at)
		VALUES (:id, :name, :conflicts, :score, :metadata, :created_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, insertSchedule, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}

	if err = r.insertSessions(ctx, tx, schedule.ID, schedule.Sessions); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create schedule: %w", err)
	}
	return nil
}

// ReplaceResult overwrites a schedule's outcome after an optimizer pass.
// Sessions are replaced wholesale, the row keeps its id, name and created_at.
func (r *ScheduleRepository) ReplaceResult(ctx context.Context, schedule *models.GeneratedSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace schedule result: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateSchedule = `UPDATE schedules SET conflicts = :conflicts, score = :score, metadata = :metadata WHERE id = :id`
	if _, err = sqlx.NamedExecContext(ctx, tx, updateSchedule, schedule); err != nil {
		return fmt.Errorf("update schedule result: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_sessions WHERE schedule_id = $1`, schedule.ID); err != nil {
		return fmt.Errorf("clear schedule sessions: %w", err)
	}

	if err = r.insertSessions(ctx, tx, schedule.ID, schedule.Sessions); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace schedule result: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) insertSessions(ctx context.Context, exec sqlx.ExtContext, scheduleID string, sessions []models.ScheduleSession) error {
	const query = `INSERT INTO schedule_sessions (schedule_id, session_id, class_id, course_id, teacher_id, room_id, type,
		day, start_hour, duration_hours, group_id, class_name, course_name, teacher_name, room_name)
		VALUES (:schedule_id, :session_id, :class_id, :course_id, :teacher_id, :room_id, :type,
		:day, :start_hour, :duration_hours, :group_id, :class_name, :course_name, :teacher_name, :room_name)`
	for i := range sessions {
		row := sessionRow{ScheduleID: scheduleID, ScheduleSession: sessions[i]}
		if _, err := sqlx.NamedExecContext(ctx, exec, query, &row); err != nil {
			return fmt.Errorf("insert schedule session: %w", err)
		}
	}
	return nil
}

// Delete removes a schedule. Sessions are dropped by the schema's cascade.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
