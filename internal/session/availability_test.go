package session

import (
	"testing"
	"time"

	"github.com/edupro/proctor-backend/internal/model"
)

func TestResolve(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 10, 45, 0, 0, time.UTC)
	schedule := &model.ExamSchedule{StartTime: start, EndTime: end, IsActive: true}
	withdrawn := &model.ExamSchedule{StartTime: start, EndTime: end, IsActive: false}

	cases := []struct {
		name         string
		schedule     *model.ExamSchedule
		now          time.Time
		hasAttempted bool
		want         Access
	}{
		{"BeforeWindow", schedule, start.Add(-time.Hour), false, AccessLocked},
		{"OneSecondBeforeStart", schedule, start.Add(-time.Second), false, AccessLocked},
		{"AtStart", schedule, start, false, AccessOpen},
		{"MidWindow", schedule, start.Add(20 * time.Minute), false, AccessOpen},
		{"AtEnd", schedule, end, false, AccessOpen},
		{"AfterWindow", schedule, end.Add(time.Second), false, AccessExpired},
		{"AttemptedMidWindow", schedule, start.Add(20 * time.Minute), true, AccessCompleted},
		{"AttemptedBeforeWindow", schedule, start.Add(-time.Hour), true, AccessCompleted},
		{"AttemptedAfterWindow", schedule, end.Add(time.Hour), true, AccessCompleted},
		{"WithdrawnMidWindow", withdrawn, start.Add(20 * time.Minute), false, AccessExpired},
		{"WithdrawnBeforeWindow", withdrawn, start.Add(-time.Hour), false, AccessExpired},
		{"WithdrawnAttempted", withdrawn, start.Add(20 * time.Minute), true, AccessCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.schedule, tc.now, tc.hasAttempted)
			if got != tc.want {
				t.Errorf("Resolve(now=%s, attempted=%v) = %s, want %s",
					tc.now.Format(time.RFC3339), tc.hasAttempted, got, tc.want)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	schedule := &model.ExamSchedule{StartTime: start, EndTime: start.Add(45 * time.Minute), IsActive: true}
	now := start.Add(10 * time.Minute)

	first := Resolve(schedule, now, false)
	for i := 0; i < 5; i++ {
		if got := Resolve(schedule, now, false); got != first {
			t.Fatalf("Resolve not stable: got %s then %s", first, got)
		}
	}
}
