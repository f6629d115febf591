package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// QueueSinks are the Redis-backed outputs of a live attempt: the
// violation log, the result store, and the guardian notifier. Each call
// is a single RPush onto a durable list drained by its worker, so the
// engine's command loop never waits on PostgreSQL. Delivery failures are
// logged and swallowed; the engine must not stall or roll back because
// Redis hiccuped.
type QueueSinks struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewQueueSinks creates the queue-backed sink set.
func NewQueueSinks(rdb *redis.Client, log zerolog.Logger) *QueueSinks {
	return &QueueSinks{
		rdb: rdb,
		log: log.With().Str("component", "queue_sinks").Logger(),
	}
}

// monitorEvent is the live payload published to the schedule's monitor
// channel for instructor dashboards.
type monitorEvent struct {
	StudentID    string  `json:"student_id"`
	Type         string  `json:"type"`
	Confidence   float64 `json:"confidence"`
	WarningCount int     `json:"warning_count"`
	OccurredAt   int64   `json:"occurred_at"`
}

// Record pushes a violation onto the persistence queue and publishes it
// to the schedule's live monitor channel.
func (q *QueueSinks) Record(v model.Violation, warningCount int) {
	ctx := context.Background()

	data, err := json.Marshal(v)
	if err != nil {
		q.log.Error().Err(err).Msg("Marshal violation failed")
		return
	}

	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistViolationsQueue, data).Err(); err != nil {
		q.log.Error().Err(err).
			Str("student_id", v.StudentID).
			Msg("Failed to enqueue violation")
	}

	event, _ := json.Marshal(monitorEvent{
		StudentID:    v.StudentID,
		Type:         string(v.Type),
		Confidence:   v.Confidence,
		WarningCount: warningCount,
		OccurredAt:   v.OccurredAt.Unix(),
	})
	if err := q.rdb.Publish(ctx, config.CacheKey.ScheduleMonitorChannel(v.ScheduleID.String()), event).Err(); err != nil {
		q.log.Debug().Err(err).Msg("Monitor publish failed")
	}
}

// SaveResult pushes a finalized result onto the persistence queue.
func (q *QueueSinks) SaveResult(result model.QuizResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return q.rdb.RPush(context.Background(), config.WorkerKey.PersistResultsQueue, data).Err()
}

// guardianJob mirrors the notification worker's queue payload.
type guardianJob struct {
	StudentID  string `json:"student_id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	NotifyType string `json:"notify_type,omitempty"`
	AlertType  string `json:"alert_type,omitempty"`
	Severity   string `json:"severity,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// NotifyGuardian enqueues a guardian notification.
func (q *QueueSinks) NotifyGuardian(studentID, title, message string, ntype model.NotificationType) {
	q.pushGuardianJob(guardianJob{
		StudentID:  studentID,
		Title:      title,
		Message:    message,
		NotifyType: string(ntype),
		CreatedAt:  time.Now().Unix(),
	})
}

// RaiseAlert enqueues a guardian alert.
func (q *QueueSinks) RaiseAlert(studentID string, atype model.AlertType, severity model.AlertSeverity, message string) {
	q.pushGuardianJob(guardianJob{
		StudentID: studentID,
		Message:   message,
		AlertType: string(atype),
		Severity:  string(severity),
		CreatedAt: time.Now().Unix(),
	})
}

func (q *QueueSinks) pushGuardianJob(job guardianJob) {
	data, err := json.Marshal(job)
	if err != nil {
		q.log.Error().Err(err).Msg("Marshal guardian job failed")
		return
	}
	if err := q.rdb.RPush(context.Background(), config.WorkerKey.GuardianNotifyQueue, data).Err(); err != nil {
		q.log.Error().Err(err).
			Str("student_id", job.StudentID).
			Msg("Failed to enqueue guardian job")
	}
}
