package session

import (
	"time"

	"github.com/edupro/proctor-backend/internal/model"
)

// Access is the entry decision for one student against one schedule.
type Access string

const (
	AccessLocked    Access = "LOCKED"
	AccessOpen      Access = "OPEN"
	AccessExpired   Access = "EXPIRED"
	AccessCompleted Access = "COMPLETED"
)

// Resolve maps a schedule, the current time and the student's attempt
// history to an access decision. First match wins: a finished attempt is
// always COMPLETED even if the window has since expired or is still open,
// and a withdrawn schedule is EXPIRED regardless of its window. Pure and
// idempotent; safe to call once per request.
func Resolve(schedule *model.ExamSchedule, now time.Time, hasAttempted bool) Access {
	switch {
	case hasAttempted:
		return AccessCompleted
	case !schedule.IsActive:
		return AccessExpired
	case now.Before(schedule.StartTime):
		return AccessLocked
	case now.After(schedule.EndTime):
		return AccessExpired
	default:
		return AccessOpen
	}
}
