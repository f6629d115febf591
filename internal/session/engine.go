package session

import (
	"context"
	"sync"
	"time"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/scoring"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StrikeLimit is the warning count at which an attempt is force-terminated.
const StrikeLimit = 3

// Generator supplies question content for an attempt. Implementations are
// assumed unreliable; the engine bounds the wait and falls back locally.
type Generator interface {
	Generate(ctx context.Context, topic string, count int) ([]model.Question, error)
}

// ViolationSink receives every reported violation, critical or not, for
// the append-only log and guardian surfacing. Called from the engine's
// command loop; implementations must not block.
type ViolationSink interface {
	Record(v model.Violation, warningCount int)
}

// Finalizer receives the finalized attempt result exactly once.
type Finalizer interface {
	Finalize(result model.QuizResult)
}

// Config wires one engine instance.
type Config struct {
	Schedule  model.ExamSchedule
	StudentID string

	Generator  Generator
	Fallback   func(topic string, count int) []model.Question
	Violations ViolationSink
	Finalizer  Finalizer

	// GenTimeout bounds the Start() wait on the Generator. Zero means 5s.
	GenTimeout time.Duration
	// Now is the clock source; nil means time.Now.
	Now func() time.Time

	Log zerolog.Logger
}

// Engine owns the state of a single exam attempt. All commands are
// funneled through one serialized execution path: event sources (the
// 1-second timer, proctoring detectors, user input) enqueue commands and
// never mutate state directly. Once the attempt reaches a terminal
// status every further command is a silent no-op.
type Engine struct {
	cfg Config
	log zerolog.Logger

	cmds chan func()
	done chan struct{}

	// Loop-owned; written only by the run goroutine.
	questions []model.Question
	stopping  bool

	mu    sync.RWMutex
	state State
}

// New creates an engine in INSTRUCTIONS_PENDING and starts its command loop.
func New(cfg Config) *Engine {
	if cfg.GenTimeout <= 0 {
		cfg.GenTimeout = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	e := &Engine{
		cfg:  cfg,
		log:  cfg.Log.With().Str("component", "session_engine").Str("schedule_id", cfg.Schedule.ID.String()).Logger(),
		cmds: make(chan func()),
		done: make(chan struct{}),
		state: State{
			ScheduleID: cfg.Schedule.ID,
			StudentID:  cfg.StudentID,
			Status:     StatusInstructionsPending,
		},
	}
	go e.run()
	return e
}

func (e *Engine) run() {
	defer close(e.done)
	for {
		cmd := <-e.cmds
		cmd()
		if e.stopping {
			return
		}
	}
}

// do enqueues fn onto the serialized command path and waits for it to
// execute. Against a finished or abandoned attempt it is a silent no-op;
// a race between two finalizing commands resolves to whichever is
// processed first, and the loser does nothing.
func (e *Engine) do(fn func()) {
	executed := make(chan struct{})
	select {
	case e.cmds <- func() {
		fn()
		close(executed)
	}:
		<-executed
	case <-e.done:
	}
}

// Done is closed when the attempt reaches a terminal state or is
// abandoned. Producers (timer, monitor) use it to tear down.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Schedule returns the schedule this attempt runs against.
func (e *Engine) Schedule() model.ExamSchedule {
	return e.cfg.Schedule
}

// Snapshot returns a copy of the current attempt state. Valid at any
// point in the lifecycle, including after finalization.
func (e *Engine) Snapshot() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.clone()
}

// Questions returns the attempt's question set with answer keys redacted.
func (e *Engine) Questions() []model.RedactedQuestion {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return model.RedactQuestions(e.questions)
}

func (e *Engine) setState(mutate func(s *State)) {
	e.mu.Lock()
	mutate(&e.state)
	e.mu.Unlock()
}

// Start transitions INSTRUCTIONS_PENDING → ACTIVE. It requests the
// question set from the generator with a bounded wait and substitutes
// the deterministic local set on failure, so the attempt is never
// blocked indefinitely by the external generator.
func (e *Engine) Start(ctx context.Context) {
	e.do(func() {
		if e.state.Status != StatusInstructionsPending {
			return
		}

		sched := e.cfg.Schedule
		genCtx, cancel := context.WithTimeout(ctx, e.cfg.GenTimeout)
		defer cancel()

		questions, err := e.cfg.Generator.Generate(genCtx, sched.Topic, sched.QuestionCount)
		if err != nil || len(questions) == 0 {
			if err != nil {
				e.log.Warn().Err(err).Msg("Question generation failed, using local set")
			}
			questions = e.cfg.Fallback(sched.Topic, sched.QuestionCount)
		}
		if len(questions) > sched.QuestionCount {
			questions = questions[:sched.QuestionCount]
		}
		e.questions = questions

		answers := make([]int, len(questions))
		for i := range answers {
			answers[i] = Unanswered
		}

		e.setState(func(s *State) {
			s.Status = StatusActive
			s.StartedAt = e.cfg.Now()
			s.TimeRemainingSeconds = sched.DurationSeconds
			s.CurrentQuestionIndex = 0
			s.Answers = answers
			s.Bookmarks = make([]bool, len(questions))
		})

		e.log.Info().Int("questions", len(questions)).Msg("Attempt active")
	})
}

// Tick decrements the countdown by one second. Fired by an external
// 1-second timer producer. Reaching zero triggers exactly one automatic
// submit; a late tick against the finished attempt is a no-op.
func (e *Engine) Tick() {
	e.do(func() {
		if e.state.Status != StatusActive {
			return
		}
		remaining := e.state.TimeRemainingSeconds - 1
		if remaining < 0 {
			remaining = 0
		}
		e.setState(func(s *State) { s.TimeRemainingSeconds = remaining })
		if remaining == 0 {
			e.submit()
		}
	})
}

// SelectAnswer overwrites the answer slot for question index. Idempotent;
// has no effect on status or warning count.
func (e *Engine) SelectAnswer(index, optionIndex int) {
	e.do(func() {
		if e.state.Status != StatusActive {
			return
		}
		if index < 0 || index >= len(e.questions) {
			return
		}
		if optionIndex < 0 || optionIndex >= len(e.questions[index].Options) {
			return
		}
		e.setState(func(s *State) { s.Answers[index] = optionIndex })
	})
}

// ToggleBookmark flips the bookmark flag for question index.
// Informational only; never affects scoring.
func (e *Engine) ToggleBookmark(index int) {
	e.do(func() {
		if e.state.Status != StatusActive {
			return
		}
		if index < 0 || index >= len(e.questions) {
			return
		}
		e.setState(func(s *State) { s.Bookmarks[index] = !s.Bookmarks[index] })
	})
}

// Navigate moves the question cursor. Bounds-checked; no state effect
// beyond the cursor.
func (e *Engine) Navigate(index int) {
	e.do(func() {
		if e.state.Status != StatusActive {
			return
		}
		if index < 0 || index >= len(e.questions) {
			return
		}
		e.setState(func(s *State) { s.CurrentQuestionIndex = index })
	})
}

// Submit finalizes the attempt with a computed score (manual submission).
func (e *Engine) Submit() {
	e.do(func() {
		if e.state.Status != StatusActive {
			return
		}
		e.submit()
	})
}

// submit runs on the command loop, from Submit or from the countdown
// reaching zero.
func (e *Engine) submit() {
	score := scoring.Compute(e.state.Answers, e.questions)
	e.finalize(StatusSubmitted, model.ResultStatusCompleted, score)
}

// ReportViolation is the entry point for the integrity monitor. The
// warning count is incremented and the violation surfaced before the
// escalation policy runs, so the recorded flag count includes critical
// hits even when termination is immediate. Escalation: warning count at
// the strike limit, or a critical violation type on first occurrence.
func (e *Engine) ReportViolation(vtype model.ViolationType, confidence float64) {
	e.do(func() {
		if e.state.Status != StatusActive {
			return
		}

		e.setState(func(s *State) { s.WarningCount++ })

		v := model.Violation{
			ID:         uuid.New(),
			StudentID:  e.cfg.StudentID,
			ScheduleID: e.cfg.Schedule.ID,
			Type:       vtype,
			Confidence: confidence,
			OccurredAt: e.cfg.Now(),
		}
		e.cfg.Violations.Record(v, e.state.WarningCount)

		e.log.Warn().
			Str("violation_type", string(vtype)).
			Int("warning_count", e.state.WarningCount).
			Msg("Violation reported")

		if e.state.WarningCount >= StrikeLimit || vtype.Critical() {
			e.finalize(StatusTerminated, model.ResultStatusTerminated, 0)
		}
	})
}

// Abandon tears the attempt down without producing a result. A no-op if
// the attempt already finalized.
func (e *Engine) Abandon() {
	e.do(func() {
		e.stopping = true
		e.log.Info().Msg("Attempt abandoned")
	})
}

// finalize freezes the attempt and hands the result to the scoring &
// notification adapter exactly once. Runs on the command loop; the
// terminal status makes every subsequent command a no-op.
func (e *Engine) finalize(status Status, resultStatus model.ResultStatus, score float64) {
	timeTaken := e.cfg.Schedule.DurationSeconds - e.state.TimeRemainingSeconds

	e.setState(func(s *State) { s.Status = status })
	e.stopping = true

	result := model.QuizResult{
		ID:               uuid.New(),
		StudentID:        e.cfg.StudentID,
		ExamID:           e.cfg.Schedule.ID,
		Score:            score,
		MaxScore:         scoring.MaxScore,
		TimeTakenSeconds: timeTaken,
		TopicsCovered:    []string{e.cfg.Schedule.Topic},
		Status:           resultStatus,
		CreatedAt:        e.cfg.Now(),
	}
	e.cfg.Finalizer.Finalize(result)

	e.log.Info().
		Str("status", string(status)).
		Float64("score", score).
		Int("time_taken_seconds", timeTaken).
		Msg("Attempt finalized")
}
