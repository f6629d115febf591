package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/repository"
	"github.com/edupro/proctor-backend/internal/session"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Common attempt errors.
var (
	ErrAttemptNotOpen     = errors.New("schedule is not open for this student")
	ErrAttemptAlreadyLive = errors.New("another attempt is already in progress")
	ErrAttemptNotFound    = errors.New("no live attempt for this student and schedule")
)

// AttemptService owns the registry of live exam attempts. Each entry is
// one session engine plus its 1-second timer producer; the registry
// enforces at most one live attempt per student. Finalized and abandoned
// attempts remove themselves.
type AttemptService struct {
	scheduleRepo *repository.ScheduleRepository
	resultRepo   *repository.ResultRepository
	generator    session.Generator
	fallback     func(topic string, count int) []model.Question
	violations   session.ViolationSink
	finalizer    session.Finalizer
	rdb          *redis.Client
	genTimeout   time.Duration
	log          zerolog.Logger

	mu   sync.Mutex
	live map[string]*session.Engine // scheduleID:studentID → engine
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	scheduleRepo *repository.ScheduleRepository,
	resultRepo *repository.ResultRepository,
	generator session.Generator,
	fallback func(topic string, count int) []model.Question,
	violations session.ViolationSink,
	finalizer session.Finalizer,
	rdb *redis.Client,
	genTimeout time.Duration,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		scheduleRepo: scheduleRepo,
		resultRepo:   resultRepo,
		generator:    generator,
		fallback:     fallback,
		violations:   violations,
		finalizer:    finalizer,
		rdb:          rdb,
		genTimeout:   genTimeout,
		log:          log.With().Str("component", "attempt_service").Logger(),
		live:         make(map[string]*session.Engine),
	}
}

func attemptKey(scheduleID uuid.UUID, studentID string) string {
	return scheduleID.String() + ":" + studentID
}

// StartAttempt runs the availability gate and, on OPEN, creates and
// starts an engine for the student. The instructions screen is the
// caller's concern; reaching this call means the student accepted them.
func (s *AttemptService) StartAttempt(ctx context.Context, scheduleID uuid.UUID, studentID string) (*session.Engine, error) {
	sched, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	attempted, err := s.resultRepo.HasAttempted(ctx, studentID, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("check attempt history: %w", err)
	}

	if access := session.Resolve(sched, time.Now(), attempted); access != session.AccessOpen {
		return nil, fmt.Errorf("%w: access is %s", ErrAttemptNotOpen, access)
	}

	key := attemptKey(scheduleID, studentID)

	s.mu.Lock()
	if _, exists := s.live[key]; exists {
		s.mu.Unlock()
		return nil, ErrAttemptAlreadyLive
	}

	// Cross-instance guard: one live attempt per student. The key is
	// cleared on finalization (by the result worker) and on teardown.
	activeKey := config.CacheKey.StudentActiveAttemptKey(studentID)
	ok, err := s.rdb.SetNX(ctx, activeKey, scheduleID.String(), time.Duration(sched.DurationSeconds+60)*time.Second).Result()
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("claim active attempt: %w", err)
	}
	if !ok {
		s.mu.Unlock()
		return nil, ErrAttemptAlreadyLive
	}

	engine := session.New(session.Config{
		Schedule:   *sched,
		StudentID:  studentID,
		Generator:  s.generator,
		Fallback:   s.fallback,
		Violations: s.violations,
		Finalizer:  s.finalizer,
		GenTimeout: s.genTimeout,
		Log:        s.log,
	})
	s.live[key] = engine
	s.mu.Unlock()

	engine.Start(ctx)

	s.cacheAttempt(ctx, engine)

	go s.runTimer(engine)
	go s.watchDone(engine, key, activeKey)

	s.log.Info().
		Str("schedule_id", scheduleID.String()).
		Str("student_id", studentID).
		Msg("Attempt started")

	return engine, nil
}

// Get returns the live engine for a student and schedule.
func (s *AttemptService) Get(scheduleID uuid.UUID, studentID string) (*session.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	engine, ok := s.live[attemptKey(scheduleID, studentID)]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return engine, nil
}

// Abandon tears down a live attempt without a result, e.g. when the
// student's connection is gone for good.
func (s *AttemptService) Abandon(scheduleID uuid.UUID, studentID string) error {
	engine, err := s.Get(scheduleID, studentID)
	if err != nil {
		return err
	}
	engine.Abandon()
	return nil
}

// Results returns the student's finalized quiz results.
func (s *AttemptService) Results(ctx context.Context, studentID string) ([]model.QuizResult, error) {
	return s.resultRepo.ListByStudent(ctx, studentID)
}

// runTimer is the attempt's 1-second countdown producer. It only ever
// enqueues Tick commands; the engine owns the clamp and the auto-submit.
func (s *AttemptService) runTimer(engine *session.Engine) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			engine.Tick()
		case <-engine.Done():
			return
		}
	}
}

// watchDone removes the registry entry and releases the active-attempt
// claim once the engine stops, whatever the reason.
func (s *AttemptService) watchDone(engine *session.Engine, key, activeKey string) {
	<-engine.Done()

	s.mu.Lock()
	delete(s.live, key)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.rdb.Del(ctx, activeKey).Err()
}

// cacheAttempt stores the attempt's start time and question set in
// Redis so a reconnecting client can be served without touching the
// engine's command path. Best-effort.
func (s *AttemptService) cacheAttempt(ctx context.Context, engine *session.Engine) {
	snap := engine.Snapshot()
	scheduleID := snap.ScheduleID.String()

	startKey := config.CacheKey.AttemptStartKey(scheduleID, snap.StudentID)
	if err := s.rdb.Set(ctx, startKey, snap.StartedAt.Unix(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache attempt start time")
	}

	if data, err := json.Marshal(engine.Questions()); err == nil {
		questionsKey := config.CacheKey.AttemptQuestionsKey(scheduleID, snap.StudentID)
		if err := s.rdb.Set(ctx, questionsKey, data, 0).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to cache attempt questions")
		}
	}
}
