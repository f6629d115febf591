package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamSchedule is a published exam window. Schedules are authored by the
// instructor collaborator; this service only ever reads them.
type ExamSchedule struct {
	ID              uuid.UUID `json:"id"`
	CourseID        string    `json:"course_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Topic           string    `json:"topic"`
	CreatedBy       string    `json:"created_by"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int       `json:"duration_seconds"`
	QuestionCount   int       `json:"question_count"`
	StrictMode      bool      `json:"strict_mode"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateScheduleRequest is the payload for publishing a new exam schedule.
type CreateScheduleRequest struct {
	CourseID        string    `json:"course_id" binding:"required,max=64"`
	Title           string    `json:"title" binding:"required,min=3,max=255"`
	Description     string    `json:"description" binding:"max=2000"`
	Topic           string    `json:"topic" binding:"required,min=2,max=255"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	DurationSeconds int       `json:"duration_seconds" binding:"required,min=60,max=28800"`
	QuestionCount   int       `json:"question_count" binding:"required,min=1,max=100"`
	StrictMode      bool      `json:"strict_mode"`
}
