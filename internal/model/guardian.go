package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertSeverity grades guardian alerts.
type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "LOW"
	SeverityMedium AlertSeverity = "MEDIUM"
	SeverityHigh   AlertSeverity = "HIGH"
)

// AlertType enumerates guardian alert categories.
type AlertType string

const (
	AlertCheating   AlertType = "CHEATING"
	AlertStudyGoal  AlertType = "STUDY_GOAL"
	AlertExamMissed AlertType = "EXAM_MISSED"
)

// GuardianAlert is a high-priority signal surfaced to a student's linked
// guardian, e.g. a proctoring violation during an exam.
type GuardianAlert struct {
	ID         uuid.UUID     `json:"id"`
	StudentID  string        `json:"student_id"`
	GuardianID string        `json:"guardian_id"`
	Type       AlertType     `json:"type"`
	Severity   AlertSeverity `json:"severity"`
	Message    string        `json:"message"`
	Read       bool          `json:"read"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NotificationType enumerates guardian notification tones.
type NotificationType string

const (
	NotifyInfo    NotificationType = "INFO"
	NotifyWarning NotificationType = "WARNING"
	NotifySuccess NotificationType = "SUCCESS"
	NotifyError   NotificationType = "ERROR"
)

// GuardianNotification is an informational message for a guardian, such
// as an exam outcome summary.
type GuardianNotification struct {
	ID         uuid.UUID        `json:"id"`
	GuardianID string           `json:"guardian_id"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"type"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Student is the minimal student record this service reads: enough to
// resolve the guardian link for proctoring notifications.
type Student struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	GuardianID *string   `json:"guardian_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
