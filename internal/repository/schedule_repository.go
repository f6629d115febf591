package repository

import (
	"context"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleRepository handles exam schedule data access. Schedules are
// authored by the instructor collaborator; this service reads them and
// only ever writes through the thin creation endpoint.
type ScheduleRepository struct {
	pool *pgxpool.Pool
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `id, course_id, title, description, topic, created_by,
	start_time, end_time, duration_seconds, question_count, strict_mode, is_active, created_at`

func scanSchedule(row interface{ Scan(dest ...any) error }) (*model.ExamSchedule, error) {
	s := &model.ExamSchedule{}
	err := row.Scan(&s.ID, &s.CourseID, &s.Title, &s.Description, &s.Topic, &s.CreatedBy,
		&s.StartTime, &s.EndTime, &s.DurationSeconds, &s.QuestionCount, &s.StrictMode, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID retrieves a single schedule.
func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSchedule, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM exam_schedules WHERE id = $1`, id)
	return scanSchedule(row)
}

// ListActive retrieves all active schedules ordered by start time.
func (r *ScheduleRepository) ListActive(ctx context.Context) ([]model.ExamSchedule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+scheduleColumns+` FROM exam_schedules WHERE is_active ORDER BY start_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []model.ExamSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

// Create inserts a newly published schedule.
func (r *ScheduleRepository) Create(ctx context.Context, s *model.ExamSchedule) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_schedules
			(course_id, title, description, topic, created_by, start_time, end_time,
			 duration_seconds, question_count, strict_mode, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		 RETURNING id, is_active, created_at`,
		s.CourseID, s.Title, s.Description, s.Topic, s.CreatedBy, s.StartTime, s.EndTime,
		s.DurationSeconds, s.QuestionCount, s.StrictMode,
	).Scan(&s.ID, &s.IsActive, &s.CreatedAt)
}

// Deactivate flips the is_active flag; the only mutation schedules see
// after publication.
func (r *ScheduleRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_schedules SET is_active = FALSE WHERE id = $1`, id)
	return err
}
