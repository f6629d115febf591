package handler

import (
	"testing"

	"github.com/edupro/proctor-backend/internal/session"
	ws "github.com/edupro/proctor-backend/internal/websocket"
)

func TestFinalEventTerminalStatuses(t *testing.T) {
	cases := []struct {
		name   string
		status session.Status
	}{
		{"Submitted", session.StatusSubmitted},
		{"Terminated", session.StatusTerminated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := finalEvent(tc.status)
			if event == nil {
				t.Fatalf("finalEvent(%s) = nil, want event", tc.status)
			}
			if event.Event != ws.EventFinalized {
				t.Errorf("event = %s, want %s", event.Event, ws.EventFinalized)
			}
			if event.Status != string(tc.status) {
				t.Errorf("status = %s, want %s", event.Status, tc.status)
			}
		})
	}
}

func TestFinalEventAbandonedAttempt(t *testing.T) {
	// Abandoning stops the engine without changing the status, so the
	// snapshot Done delivers is still ACTIVE. The client must not be told
	// the exam finished.
	if event := finalEvent(session.StatusActive); event != nil {
		t.Fatalf("finalEvent(ACTIVE) = %+v, want nil", event)
	}
	if event := finalEvent(session.StatusInstructionsPending); event != nil {
		t.Fatalf("finalEvent(INSTRUCTIONS_PENDING) = %+v, want nil", event)
	}
}
