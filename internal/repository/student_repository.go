package repository

import (
	"context"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StudentRepository reads student records.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, guardian_id, created_at FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.GuardianID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
