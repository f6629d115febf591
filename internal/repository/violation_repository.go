package repository

import (
	"context"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ViolationRepository handles the append-only proctoring log.
type ViolationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(pool *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{pool: pool}
}

// BulkInsert appends a batch of violations with a single COPY.
func (r *ViolationRepository) BulkInsert(ctx context.Context, violations []*model.Violation) error {
	rows := make([][]interface{}, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, []interface{}{
			v.ID, v.StudentID, v.ScheduleID, string(v.Type), v.Confidence, v.OccurredAt,
		})
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"violations"},
		[]string{"id", "student_id", "schedule_id", "violation_type", "confidence", "occurred_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// Insert appends a single violation; the row-by-row fallback path.
func (r *ViolationRepository) Insert(ctx context.Context, v *model.Violation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO violations (id, student_id, schedule_id, violation_type, confidence, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		v.ID, v.StudentID, v.ScheduleID, string(v.Type), v.Confidence, v.OccurredAt)
	return err
}

// CountByStudent returns the number of logged violations per student for
// one schedule, for the instructor monitor view.
func (r *ViolationRepository) CountByStudent(ctx context.Context, scheduleID uuid.UUID) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id, COUNT(*)
		 FROM violations
		 WHERE schedule_id = $1
		 GROUP BY student_id`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var sid string
		var count int64
		if err := rows.Scan(&sid, &count); err != nil {
			return nil, err
		}
		counts[sid] = count
	}
	return counts, rows.Err()
}
