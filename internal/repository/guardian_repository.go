package repository

import (
	"context"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GuardianRepository handles guardian alert and notification storage.
type GuardianRepository struct {
	pool *pgxpool.Pool
}

// NewGuardianRepository creates a new GuardianRepository.
func NewGuardianRepository(pool *pgxpool.Pool) *GuardianRepository {
	return &GuardianRepository{pool: pool}
}

// CreateAlert inserts a guardian alert.
func (r *GuardianRepository) CreateAlert(ctx context.Context, a *model.GuardianAlert) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO guardian_alerts (id, student_id, guardian_id, alert_type, severity, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		a.ID, a.StudentID, a.GuardianID, string(a.Type), string(a.Severity), a.Message, a.CreatedAt)
	return err
}

// CreateNotification inserts a guardian notification.
func (r *GuardianRepository) CreateNotification(ctx context.Context, n *model.GuardianNotification) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO guardian_notifications (id, guardian_id, title, message, notify_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		n.ID, n.GuardianID, n.Title, n.Message, string(n.Type), n.CreatedAt)
	return err
}

// ListAlerts retrieves a guardian's alerts, newest first.
func (r *GuardianRepository) ListAlerts(ctx context.Context, guardianID string) ([]model.GuardianAlert, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, guardian_id, alert_type, severity, message, read, created_at
		 FROM guardian_alerts
		 WHERE guardian_id = $1
		 ORDER BY created_at DESC`, guardianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []model.GuardianAlert
	for rows.Next() {
		var a model.GuardianAlert
		if err := rows.Scan(&a.ID, &a.StudentID, &a.GuardianID, &a.Type, &a.Severity, &a.Message, &a.Read, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// ListNotifications retrieves a guardian's notifications, newest first.
func (r *GuardianRepository) ListNotifications(ctx context.Context, guardianID string) ([]model.GuardianNotification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, guardian_id, title, message, notify_type, read, created_at
		 FROM guardian_notifications
		 WHERE guardian_id = $1
		 ORDER BY created_at DESC`, guardianID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []model.GuardianNotification
	for rows.Next() {
		var n model.GuardianNotification
		if err := rows.Scan(&n.ID, &n.GuardianID, &n.Title, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkAlertRead flags an alert as read. The guardian id guards against
// cross-guardian access.
func (r *GuardianRepository) MarkAlertRead(ctx context.Context, guardianID string, alertID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE guardian_alerts SET read = TRUE WHERE id = $1 AND guardian_id = $2`,
		alertID, guardianID)
	return err
}

// MarkNotificationRead flags a notification as read.
func (r *GuardianRepository) MarkNotificationRead(ctx context.Context, guardianID string, notificationID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE guardian_notifications SET read = TRUE WHERE id = $1 AND guardian_id = $2`,
		notificationID, guardianID)
	return err
}

// GuardianForStudent resolves a student's linked guardian. Returns nil
// when the student has no guardian link.
func (r *GuardianRepository) GuardianForStudent(ctx context.Context, studentID string) (*string, error) {
	var guardianID *string
	err := r.pool.QueryRow(ctx,
		`SELECT guardian_id FROM students WHERE id = $1`, studentID,
	).Scan(&guardianID)
	if err != nil {
		return nil, err
	}
	return guardianID, nil
}
