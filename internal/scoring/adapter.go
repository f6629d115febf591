package scoring

import (
	"fmt"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/rs/zerolog"
)

// ResultStore persists finalized quiz results.
type ResultStore interface {
	SaveResult(result model.QuizResult) error
}

// GuardianNotifier delivers guardian-facing messages. Both calls are
// fire-and-forget: implementations must swallow their own delivery
// failures rather than surface them to the caller.
type GuardianNotifier interface {
	NotifyGuardian(studentID, title, message string, ntype model.NotificationType)
	RaiseAlert(studentID string, atype model.AlertType, severity model.AlertSeverity, message string)
}

// Adapter is the scoring & notification endpoint of an attempt: it
// persists the result and emits the outcome notification for the
// student's linked guardian, if any. Notification failures never roll
// back the persisted result.
type Adapter struct {
	results   ResultStore
	guardians GuardianNotifier
	log       zerolog.Logger
}

// NewAdapter creates the finalization adapter.
func NewAdapter(results ResultStore, guardians GuardianNotifier, log zerolog.Logger) *Adapter {
	return &Adapter{
		results:   results,
		guardians: guardians,
		log:       log.With().Str("component", "scoring_adapter").Logger(),
	}
}

// Finalize stores the result, then notifies the guardian about the
// outcome. Called exactly once per attempt by the session engine.
func (a *Adapter) Finalize(result model.QuizResult) {
	if err := a.results.SaveResult(result); err != nil {
		a.log.Error().Err(err).
			Str("student_id", result.StudentID).
			Str("exam_id", result.ExamID.String()).
			Msg("Failed to persist quiz result")
	}

	switch result.Status {
	case model.ResultStatusTerminated:
		a.guardians.RaiseAlert(result.StudentID,
			model.AlertCheating, model.SeverityHigh,
			"Exam terminated after repeated proctoring violations.")
		a.guardians.NotifyGuardian(result.StudentID,
			"Exam Terminated",
			"Exam was auto-submitted due to suspicious activity.",
			model.NotifyError)
	case model.ResultStatusCompleted:
		a.guardians.NotifyGuardian(result.StudentID,
			"Exam Completed",
			fmt.Sprintf("Student completed the exam with score: %.0f%%", result.Score),
			model.NotifyInfo)
	}
}
