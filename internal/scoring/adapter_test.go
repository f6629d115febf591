package scoring

import (
	"errors"
	"testing"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakeStore struct {
	saved []model.QuizResult
	err   error
}

func (s *fakeStore) SaveResult(result model.QuizResult) error {
	s.saved = append(s.saved, result)
	return s.err
}

type fakeNotifier struct {
	notifications []string
	alerts        []model.AlertType
	severities    []model.AlertSeverity
	notifyTypes   []model.NotificationType
}

func (n *fakeNotifier) NotifyGuardian(studentID, title, message string, ntype model.NotificationType) {
	n.notifications = append(n.notifications, title)
	n.notifyTypes = append(n.notifyTypes, ntype)
}

func (n *fakeNotifier) RaiseAlert(studentID string, atype model.AlertType, severity model.AlertSeverity, message string) {
	n.alerts = append(n.alerts, atype)
	n.severities = append(n.severities, severity)
}

func TestAdapterCompletedResult(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	adapter := NewAdapter(store, notifier, zerolog.Nop())

	adapter.Finalize(model.QuizResult{
		ID:        uuid.New(),
		StudentID: "student-1",
		ExamID:    uuid.New(),
		Score:     85,
		MaxScore:  MaxScore,
		Status:    model.ResultStatusCompleted,
	})

	if len(store.saved) != 1 {
		t.Fatalf("saved results = %d, want 1", len(store.saved))
	}
	if len(notifier.alerts) != 0 {
		t.Errorf("alerts = %d, want 0 for a completed exam", len(notifier.alerts))
	}
	if len(notifier.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.notifications))
	}
	if notifier.notifications[0] != "Exam Completed" {
		t.Errorf("notification title = %q", notifier.notifications[0])
	}
	if notifier.notifyTypes[0] != model.NotifyInfo {
		t.Errorf("notify type = %s, want %s", notifier.notifyTypes[0], model.NotifyInfo)
	}
}

func TestAdapterTerminatedResult(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	adapter := NewAdapter(store, notifier, zerolog.Nop())

	adapter.Finalize(model.QuizResult{
		ID:        uuid.New(),
		StudentID: "student-1",
		ExamID:    uuid.New(),
		Score:     0,
		MaxScore:  MaxScore,
		Status:    model.ResultStatusTerminated,
	})

	if len(store.saved) != 1 {
		t.Fatalf("saved results = %d, want 1", len(store.saved))
	}
	if len(notifier.alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(notifier.alerts))
	}
	if notifier.alerts[0] != model.AlertCheating {
		t.Errorf("alert type = %s, want %s", notifier.alerts[0], model.AlertCheating)
	}
	if notifier.severities[0] != model.SeverityHigh {
		t.Errorf("severity = %s, want %s", notifier.severities[0], model.SeverityHigh)
	}
	if len(notifier.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.notifications))
	}
	if notifier.notifyTypes[0] != model.NotifyError {
		t.Errorf("notify type = %s, want %s", notifier.notifyTypes[0], model.NotifyError)
	}
}

func TestAdapterNotifiesDespiteStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("queue full")}
	notifier := &fakeNotifier{}
	adapter := NewAdapter(store, notifier, zerolog.Nop())

	adapter.Finalize(model.QuizResult{
		ID:        uuid.New(),
		StudentID: "student-1",
		ExamID:    uuid.New(),
		Status:    model.ResultStatusCompleted,
	})

	if len(notifier.notifications) != 1 {
		t.Errorf("notifications = %d, want 1 even when persistence fails", len(notifier.notifications))
	}
}
