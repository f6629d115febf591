package model

import (
	"time"

	"github.com/google/uuid"
)

// ViolationType enumerates proctoring violation categories.
type ViolationType string

const (
	ViolationTabSwitch      ViolationType = "TAB_SWITCH"
	ViolationLookingAway    ViolationType = "LOOKING_AWAY"
	ViolationNoFace         ViolationType = "NO_FACE"
	ViolationMultipleFaces  ViolationType = "MULTIPLE_FACES"
	ViolationCameraOff      ViolationType = "CAMERA_OFF"
	ViolationCameraBlocked  ViolationType = "CAMERA_BLOCKED"
	ViolationFullscreenExit ViolationType = "FULLSCREEN_EXIT"
)

// Critical reports whether a single occurrence of this violation type
// terminates the attempt outright, bypassing the strike threshold.
func (t ViolationType) Critical() bool {
	return t == ViolationNoFace || t == ViolationCameraBlocked
}

// Violation is one append-only proctoring log entry. Never mutated or
// removed once recorded.
type Violation struct {
	ID         uuid.UUID     `json:"id"`
	StudentID  string        `json:"student_id"`
	ScheduleID uuid.UUID     `json:"schedule_id"`
	Type       ViolationType `json:"violation_type"`
	Confidence float64       `json:"confidence"`
	OccurredAt time.Time     `json:"occurred_at"`
}
