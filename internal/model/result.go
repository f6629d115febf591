package model

import (
	"time"

	"github.com/google/uuid"
)

// ResultStatus enumerates how an attempt ended.
type ResultStatus string

const (
	ResultStatusCompleted  ResultStatus = "COMPLETED"
	ResultStatusTerminated ResultStatus = "TERMINATED"
)

// QuizResult is the immutable record of one finalized exam attempt.
// Exactly one row exists per finalized attempt; its existence is the
// attempt-history input to the availability resolver.
type QuizResult struct {
	ID               uuid.UUID    `json:"id"`
	StudentID        string       `json:"student_id"`
	ExamID           uuid.UUID    `json:"exam_id"`
	Score            float64      `json:"score"`
	MaxScore         float64      `json:"max_score"`
	TimeTakenSeconds int          `json:"time_taken_seconds"`
	TopicsCovered    []string     `json:"topics_covered"`
	Status           ResultStatus `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
}
