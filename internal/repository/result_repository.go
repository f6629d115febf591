package repository

import (
	"context"
	"time"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultRepository handles quiz result data access. Results are written
// once per finalized attempt and never updated.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// HasAttempted reports whether a finalized attempt exists for the
// student and schedule. This is the attempt-history input to the
// availability resolver.
func (r *ResultRepository) HasAttempted(ctx context.Context, studentID string, examID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM quiz_results WHERE student_id = $1 AND exam_id = $2)`,
		studentID, examID,
	).Scan(&exists)
	return exists, err
}

// BulkInsert writes a batch of finalized results in one statement.
// Duplicate ids are skipped so a requeued batch cannot double-write.
func (r *ResultRepository) BulkInsert(ctx context.Context, batch []*model.QuizResult) error {
	n := len(batch)

	ids := make([]uuid.UUID, 0, n)
	students := make([]string, 0, n)
	exams := make([]uuid.UUID, 0, n)
	scores := make([]float64, 0, n)
	maxScores := make([]float64, 0, n)
	timesTaken := make([]int, 0, n)
	topics := make([]string, 0, n)
	statuses := make([]string, 0, n)
	createdAts := make([]time.Time, 0, n)

	for _, res := range batch {
		topic := ""
		if len(res.TopicsCovered) > 0 {
			topic = res.TopicsCovered[0]
		}
		ids = append(ids, res.ID)
		students = append(students, res.StudentID)
		exams = append(exams, res.ExamID)
		scores = append(scores, res.Score)
		maxScores = append(maxScores, res.MaxScore)
		timesTaken = append(timesTaken, res.TimeTakenSeconds)
		topics = append(topics, topic)
		statuses = append(statuses, string(res.Status))
		createdAts = append(createdAts, res.CreatedAt)
	}

	query := `
		INSERT INTO quiz_results
			(id, student_id, exam_id, score, max_score, time_taken_seconds, topics_covered, status, created_at)
		SELECT
			u.id,
			u.student_id,
			u.exam_id,
			u.score,
			u.max_score,
			u.time_taken,
			ARRAY[u.topic],
			u.status,
			u.created_at
		FROM UNNEST(
			$1::uuid[],
			$2::text[],
			$3::uuid[],
			$4::float8[],
			$5::float8[],
			$6::int[],
			$7::text[],
			$8::text[],
			$9::timestamptz[]
		) AS u (id, student_id, exam_id, score, max_score, time_taken, topic, status, created_at)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		ids, students, exams, scores, maxScores, timesTaken, topics, statuses, createdAts)
	return err
}

// Create inserts a finalized quiz result.
func (r *ResultRepository) Create(ctx context.Context, res *model.QuizResult) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_results
			(id, student_id, exam_id, score, max_score, time_taken_seconds, topics_covered, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		res.ID, res.StudentID, res.ExamID, res.Score, res.MaxScore,
		res.TimeTakenSeconds, res.TopicsCovered, res.Status, res.CreatedAt)
	return err
}

// ListByStudent retrieves a student's results, newest first.
func (r *ResultRepository) ListByStudent(ctx context.Context, studentID string) ([]model.QuizResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, exam_id, score, max_score, time_taken_seconds, topics_covered, status, created_at
		 FROM quiz_results
		 WHERE student_id = $1
		 ORDER BY created_at DESC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.QuizResult
	for rows.Next() {
		var res model.QuizResult
		if err := rows.Scan(&res.ID, &res.StudentID, &res.ExamID, &res.Score, &res.MaxScore,
			&res.TimeTakenSeconds, &res.TopicsCovered, &res.Status, &res.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// ListByExam retrieves all results for one schedule, for the instructor
// result sheet.
func (r *ResultRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.QuizResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, exam_id, score, max_score, time_taken_seconds, topics_covered, status, created_at
		 FROM quiz_results
		 WHERE exam_id = $1
		 ORDER BY created_at ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.QuizResult
	for rows.Next() {
		var res model.QuizResult
		if err := rows.Scan(&res.ID, &res.StudentID, &res.ExamID, &res.Score, &res.MaxScore,
			&res.TimeTakenSeconds, &res.TopicsCovered, &res.Status, &res.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
