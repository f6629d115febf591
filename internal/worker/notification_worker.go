package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NotificationWorker consumes guardian_notify_queue and fans each job
// out to the student's linked guardian: a notification row, plus an
// alert row when the job carries an alert type. Jobs for students with
// no guardian link are discarded.
type NotificationWorker struct {
	guardians *repository.GuardianRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewNotificationWorker creates a new NotificationWorker.
func NewNotificationWorker(guardians *repository.GuardianRepository, rdb *redis.Client, log zerolog.Logger) *NotificationWorker {
	return &NotificationWorker{
		guardians: guardians,
		rdb:       rdb,
		log:       log.With().Str("component", "notification_worker").Logger(),
	}
}

// notifyJob carries one guardian delivery. A non-empty NotifyType writes
// a notification row; a non-empty AlertType writes an alert row. A job
// may carry either or both.
type notifyJob struct {
	StudentID  string `json:"student_id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	NotifyType string `json:"notify_type,omitempty"`
	AlertType  string `json:"alert_type,omitempty"`
	Severity   string `json:"severity,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *NotificationWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.GuardianNotifyQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var job notifyJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.deliver(ctx, &job); err != nil {
		w.log.Error().Err(err).
			Str("student_id", job.StudentID).
			Msg("Deliver error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.GuardianNotifyQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, job *notifyJob) error {
	guardianID, err := w.guardians.GuardianForStudent(ctx, job.StudentID)
	if err != nil {
		return err
	}
	if guardianID == nil {
		// No guardian linked; nothing to deliver.
		w.log.Debug().Str("student_id", job.StudentID).Msg("Student has no guardian, dropping job")
		return nil
	}

	createdAt := time.Unix(job.CreatedAt, 0)

	if job.NotifyType != "" {
		err := w.guardians.CreateNotification(ctx, &model.GuardianNotification{
			ID:         uuid.New(),
			GuardianID: *guardianID,
			Title:      job.Title,
			Message:    job.Message,
			Type:       model.NotificationType(job.NotifyType),
			CreatedAt:  createdAt,
		})
		if err != nil {
			return err
		}
	}

	if job.AlertType == "" {
		return nil
	}

	return w.guardians.CreateAlert(ctx, &model.GuardianAlert{
		ID:         uuid.New(),
		StudentID:  job.StudentID,
		GuardianID: *guardianID,
		Type:       model.AlertType(job.AlertType),
		Severity:   model.AlertSeverity(job.Severity),
		Message:    job.Message,
		CreatedAt:  createdAt,
	})
}

// drain processes all remaining items in the queue before shutdown.
func (w *NotificationWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.GuardianNotifyQueue).Result()
		if err != nil {
			break
		}

		var job notifyJob
		if err := json.Unmarshal([]byte(result), &job); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.deliver(ctx, &job); err != nil {
			w.log.Error().Err(err).Msg("Drain deliver error")
			w.rdb.RPush(ctx, config.WorkerKey.GuardianNotifyQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
