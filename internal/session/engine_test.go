package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type stubGenerator struct {
	questions []model.Question
	err       error
	calls     int
}

func (g *stubGenerator) Generate(ctx context.Context, topic string, count int) ([]model.Question, error) {
	g.calls++
	return g.questions, g.err
}

type recordingSink struct {
	violations []model.Violation
	warnings   []int
}

func (s *recordingSink) Record(v model.Violation, warningCount int) {
	s.violations = append(s.violations, v)
	s.warnings = append(s.warnings, warningCount)
}

type recordingFinalizer struct {
	results []model.QuizResult
}

func (f *recordingFinalizer) Finalize(result model.QuizResult) {
	f.results = append(f.results, result)
}

func fixedQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			Text:         "q",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % 4,
		}
	}
	return qs
}

type harness struct {
	engine    *Engine
	sink      *recordingSink
	finalizer *recordingFinalizer
	gen       *stubGenerator
}

func newHarness(t *testing.T, questions []model.Question, duration int) *harness {
	t.Helper()

	gen := &stubGenerator{questions: questions}
	sink := &recordingSink{}
	fin := &recordingFinalizer{}

	engine := New(Config{
		Schedule: model.ExamSchedule{
			ID:              uuid.New(),
			Topic:           "Networking",
			DurationSeconds: duration,
			QuestionCount:   len(questions),
		},
		StudentID:  "student-1",
		Generator:  gen,
		Fallback:   func(topic string, count int) []model.Question { return fixedQuestions(count) },
		Violations: sink,
		Finalizer:  fin,
		GenTimeout: time.Second,
		Log:        zerolog.Nop(),
	})
	return &harness{engine: engine, sink: sink, finalizer: fin, gen: gen}
}

func (h *harness) tick(n int) {
	for i := 0; i < n; i++ {
		h.engine.Tick()
	}
}

func TestEngineStartActivates(t *testing.T) {
	h := newHarness(t, fixedQuestions(5), 120)
	h.engine.Start(context.Background())

	state := h.engine.Snapshot()
	if state.Status != StatusActive {
		t.Fatalf("status = %s, want ACTIVE", state.Status)
	}
	if state.TimeRemainingSeconds != 120 {
		t.Errorf("time remaining = %d, want 120", state.TimeRemainingSeconds)
	}
	if len(state.Answers) != 5 {
		t.Fatalf("answers length = %d, want 5", len(state.Answers))
	}
	for i, a := range state.Answers {
		if a != Unanswered {
			t.Errorf("answers[%d] = %d, want %d", i, a, Unanswered)
		}
	}
	if got := len(h.engine.Questions()); got != 5 {
		t.Errorf("questions = %d, want 5", got)
	}
}

func TestEngineStartFallsBackOnGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream unavailable")}
	sink := &recordingSink{}
	fin := &recordingFinalizer{}
	fallbackCalls := 0

	engine := New(Config{
		Schedule:  model.ExamSchedule{ID: uuid.New(), Topic: "Databases", DurationSeconds: 60, QuestionCount: 4},
		StudentID: "student-1",
		Generator: gen,
		Fallback: func(topic string, count int) []model.Question {
			fallbackCalls++
			return fixedQuestions(count)
		},
		Violations: sink,
		Finalizer:  fin,
		GenTimeout: time.Second,
		Log:        zerolog.Nop(),
	})
	engine.Start(context.Background())

	if fallbackCalls != 1 {
		t.Fatalf("fallback calls = %d, want 1", fallbackCalls)
	}
	if engine.Snapshot().Status != StatusActive {
		t.Fatal("attempt did not activate on fallback questions")
	}
	if got := len(engine.Questions()); got != 4 {
		t.Errorf("questions = %d, want 4", got)
	}
}

func TestEngineStartTruncatesOversizedGeneratorOutput(t *testing.T) {
	engine := New(Config{
		Schedule:   model.ExamSchedule{ID: uuid.New(), Topic: "OS", DurationSeconds: 60, QuestionCount: 3},
		StudentID:  "student-1",
		Generator:  &stubGenerator{questions: fixedQuestions(10)},
		Fallback:   func(topic string, count int) []model.Question { return fixedQuestions(count) },
		Violations: &recordingSink{},
		Finalizer:  &recordingFinalizer{},
		GenTimeout: time.Second,
		Log:        zerolog.Nop(),
	})
	engine.Start(context.Background())

	if got := len(engine.Questions()); got != 3 {
		t.Errorf("questions = %d, want 3 after truncation", got)
	}
}

func TestEngineManualSubmitScoresAnswers(t *testing.T) {
	questions := fixedQuestions(5) // correct indexes 0,1,2,3,0
	h := newHarness(t, questions, 120)
	h.engine.Start(context.Background())

	// Answer 4 of 5 correctly; leave the last unanswered.
	for i := 0; i < 4; i++ {
		h.engine.SelectAnswer(i, questions[i].CorrectIndex)
	}

	// 80 seconds elapse before the student submits.
	h.tick(80)
	h.engine.Submit()

	if len(h.finalizer.results) != 1 {
		t.Fatalf("finalize calls = %d, want 1", len(h.finalizer.results))
	}
	res := h.finalizer.results[0]
	if res.Score != 80 {
		t.Errorf("score = %v, want 80", res.Score)
	}
	if res.MaxScore != 100 {
		t.Errorf("max score = %v, want 100", res.MaxScore)
	}
	if res.TimeTakenSeconds != 80 {
		t.Errorf("time taken = %d, want 80", res.TimeTakenSeconds)
	}
	if res.Status != model.ResultStatusCompleted {
		t.Errorf("result status = %s, want COMPLETED", res.Status)
	}
	if h.engine.Snapshot().Status != StatusSubmitted {
		t.Errorf("attempt status = %s, want SUBMITTED", h.engine.Snapshot().Status)
	}
}

func TestEngineCountdownAutoSubmitsExactlyOnce(t *testing.T) {
	h := newHarness(t, fixedQuestions(2), 3)
	h.engine.Start(context.Background())

	// Run the clock past zero; the late ticks must be no-ops.
	h.tick(10)

	if len(h.finalizer.results) != 1 {
		t.Fatalf("finalize calls = %d, want exactly 1", len(h.finalizer.results))
	}
	res := h.finalizer.results[0]
	if res.Status != model.ResultStatusCompleted {
		t.Errorf("result status = %s, want COMPLETED", res.Status)
	}
	if res.TimeTakenSeconds != 3 {
		t.Errorf("time taken = %d, want full duration 3", res.TimeTakenSeconds)
	}
}

func TestEngineStrikeLimitTerminates(t *testing.T) {
	h := newHarness(t, fixedQuestions(4), 300)
	h.engine.Start(context.Background())
	h.engine.SelectAnswer(0, 0)

	h.engine.ReportViolation(model.ViolationTabSwitch, 0)
	h.engine.ReportViolation(model.ViolationTabSwitch, 0)
	if h.engine.Snapshot().Status != StatusActive {
		t.Fatal("attempt terminated below the strike limit")
	}

	h.engine.ReportViolation(model.ViolationFullscreenExit, 0)

	state := h.engine.Snapshot()
	if state.Status != StatusTerminated {
		t.Fatalf("status = %s, want TERMINATED", state.Status)
	}
	if state.WarningCount != 3 {
		t.Errorf("warning count = %d, want 3", state.WarningCount)
	}
	if len(h.sink.violations) != 3 {
		t.Fatalf("recorded violations = %d, want 3", len(h.sink.violations))
	}
	if h.sink.warnings[2] != 3 {
		t.Errorf("third recorded warning count = %d, want 3", h.sink.warnings[2])
	}

	if len(h.finalizer.results) != 1 {
		t.Fatalf("finalize calls = %d, want 1", len(h.finalizer.results))
	}
	res := h.finalizer.results[0]
	if res.Status != model.ResultStatusTerminated {
		t.Errorf("result status = %s, want TERMINATED", res.Status)
	}
	if res.Score != 0 {
		t.Errorf("terminated score = %v, want 0", res.Score)
	}
}

func TestEngineCriticalViolationTerminatesImmediately(t *testing.T) {
	for _, vtype := range []model.ViolationType{model.ViolationNoFace, model.ViolationCameraBlocked} {
		t.Run(string(vtype), func(t *testing.T) {
			h := newHarness(t, fixedQuestions(4), 300)
			h.engine.Start(context.Background())

			h.engine.ReportViolation(vtype, 0.95)

			state := h.engine.Snapshot()
			if state.Status != StatusTerminated {
				t.Fatalf("status = %s, want TERMINATED on first %s", state.Status, vtype)
			}
			if state.WarningCount != 1 {
				t.Errorf("warning count = %d, want 1", state.WarningCount)
			}
			if len(h.sink.violations) != 1 {
				t.Fatalf("recorded violations = %d, want 1", len(h.sink.violations))
			}
			if h.sink.violations[0].Type != vtype {
				t.Errorf("recorded type = %s, want %s", h.sink.violations[0].Type, vtype)
			}
		})
	}
}

func TestEngineTerminalStateIgnoresCommands(t *testing.T) {
	h := newHarness(t, fixedQuestions(3), 120)
	h.engine.Start(context.Background())
	h.engine.Submit()

	before := h.engine.Snapshot()

	// Every command against a finished attempt is a silent no-op.
	h.engine.Submit()
	h.engine.Tick()
	h.engine.SelectAnswer(0, 1)
	h.engine.Navigate(2)
	h.engine.ToggleBookmark(1)
	h.engine.ReportViolation(model.ViolationNoFace, 1)
	h.engine.Start(context.Background())

	after := h.engine.Snapshot()
	if after.Status != before.Status {
		t.Errorf("status changed after finalization: %s -> %s", before.Status, after.Status)
	}
	if after.WarningCount != before.WarningCount {
		t.Errorf("warning count changed after finalization")
	}
	if len(h.finalizer.results) != 1 {
		t.Fatalf("finalize calls = %d, want exactly 1", len(h.finalizer.results))
	}
	if len(h.sink.violations) != 0 {
		t.Errorf("violations recorded after finalization: %d", len(h.sink.violations))
	}

	select {
	case <-h.engine.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after finalization")
	}
}

func TestEngineAnswerAndNavigationBounds(t *testing.T) {
	h := newHarness(t, fixedQuestions(3), 120)
	h.engine.Start(context.Background())

	h.engine.SelectAnswer(-1, 0)
	h.engine.SelectAnswer(3, 0)
	h.engine.SelectAnswer(0, -1)
	h.engine.SelectAnswer(0, 4)
	h.engine.Navigate(-1)
	h.engine.Navigate(3)

	state := h.engine.Snapshot()
	for i, a := range state.Answers {
		if a != Unanswered {
			t.Errorf("answers[%d] = %d, want untouched", i, a)
		}
	}
	if state.CurrentQuestionIndex != 0 {
		t.Errorf("cursor = %d, want 0", state.CurrentQuestionIndex)
	}
}

func TestEngineAnswerOverwriteAndBookmark(t *testing.T) {
	h := newHarness(t, fixedQuestions(3), 120)
	h.engine.Start(context.Background())

	h.engine.SelectAnswer(1, 2)
	h.engine.SelectAnswer(1, 3)
	h.engine.ToggleBookmark(1)
	h.engine.ToggleBookmark(1)
	h.engine.ToggleBookmark(2)
	h.engine.Navigate(2)

	state := h.engine.Snapshot()
	if state.Answers[1] != 3 {
		t.Errorf("answers[1] = %d, want last write 3", state.Answers[1])
	}
	if state.Bookmarks[1] {
		t.Error("bookmark 1 should be cleared after double toggle")
	}
	if !state.Bookmarks[2] {
		t.Error("bookmark 2 should be set")
	}
	if state.CurrentQuestionIndex != 2 {
		t.Errorf("cursor = %d, want 2", state.CurrentQuestionIndex)
	}
}

func TestEngineAbandonProducesNoResult(t *testing.T) {
	h := newHarness(t, fixedQuestions(3), 120)
	h.engine.Start(context.Background())

	h.engine.Abandon()

	select {
	case <-h.engine.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after abandon")
	}
	if len(h.finalizer.results) != 0 {
		t.Errorf("finalize calls = %d, want 0 after abandon", len(h.finalizer.results))
	}
}

func TestEngineQuestionsAreRedacted(t *testing.T) {
	h := newHarness(t, fixedQuestions(3), 120)
	h.engine.Start(context.Background())

	for _, q := range h.engine.Questions() {
		if len(q.Options) != 4 {
			t.Errorf("options = %d, want 4", len(q.Options))
		}
	}
}

func TestEngineSnapshotIsACopy(t *testing.T) {
	h := newHarness(t, fixedQuestions(3), 120)
	h.engine.Start(context.Background())

	snap := h.engine.Snapshot()
	snap.Answers[0] = 2
	snap.Bookmarks[0] = true

	state := h.engine.Snapshot()
	if state.Answers[0] != Unanswered {
		t.Error("snapshot mutation leaked into engine state")
	}
	if state.Bookmarks[0] {
		t.Error("snapshot bookmark mutation leaked into engine state")
	}
}
