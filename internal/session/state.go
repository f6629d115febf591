package session

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates attempt states. Transitions are strictly forward:
// INSTRUCTIONS_PENDING → ACTIVE → {SUBMITTED | TERMINATED}.
type Status string

const (
	StatusInstructionsPending Status = "INSTRUCTIONS_PENDING"
	StatusActive              Status = "ACTIVE"
	StatusSubmitted           Status = "SUBMITTED"
	StatusTerminated          Status = "TERMINATED"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusSubmitted || s == StatusTerminated
}

// Unanswered marks an answer slot with no selected option.
const Unanswered = -1

// State is a point-in-time snapshot of one exam attempt.
type State struct {
	ScheduleID           uuid.UUID `json:"schedule_id"`
	StudentID            string    `json:"student_id"`
	StartedAt            time.Time `json:"started_at"`
	TimeRemainingSeconds int       `json:"time_remaining_seconds"`
	CurrentQuestionIndex int       `json:"current_question_index"`
	Answers              []int     `json:"answers"`
	Bookmarks            []bool    `json:"bookmarks"`
	WarningCount         int       `json:"warning_count"`
	Status               Status    `json:"status"`
}

// clone deep-copies the snapshot so callers can't alias engine-owned slices.
func (s State) clone() State {
	out := s
	out.Answers = append([]int(nil), s.Answers...)
	out.Bookmarks = append([]bool(nil), s.Bookmarks...)
	return out
}
