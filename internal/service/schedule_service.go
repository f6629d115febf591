package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/repository"
	"github.com/edupro/proctor-backend/internal/session"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// schedulePayloadTTL bounds how stale a cached schedule can get in the
// lobby. The availability overlay is always computed fresh.
const schedulePayloadTTL = 30 * time.Second

// ErrScheduleWithdrawn marks a schedule deactivated by its instructor.
var ErrScheduleWithdrawn = errors.New("schedule withdrawn")

// ScheduleService handles exam schedule business logic.
type ScheduleService struct {
	scheduleRepo *repository.ScheduleRepository
	resultRepo   *repository.ResultRepository
	rdb          *redis.Client
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(
	scheduleRepo *repository.ScheduleRepository,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		resultRepo:   resultRepo,
		rdb:          rdb,
	}
}

// LobbyExam represents a schedule as displayed in the student lobby,
// with the student's access decision overlaid.
type LobbyExam struct {
	model.ExamSchedule
	Access session.Access `json:"access"`
}

// GetLobby returns the active schedules with a per-student access
// decision. Access is derived, never stored: each call re-resolves from
// the clock and the student's attempt history.
func (s *ScheduleService) GetLobby(ctx context.Context, studentID string) ([]LobbyExam, error) {
	schedules, err := s.scheduleRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}

	var lobby []LobbyExam
	now := time.Now()

	for i := range schedules {
		sched := &schedules[i]

		attempted, err := s.resultRepo.HasAttempted(ctx, studentID, sched.ID)
		if err != nil {
			return nil, fmt.Errorf("check attempt history: %w", err)
		}

		lobby = append(lobby, LobbyExam{
			ExamSchedule: *sched,
			Access:       session.Resolve(sched, now, attempted),
		})
	}

	return lobby, nil
}

// GetSchedule returns one schedule with the student's access decision.
// The schedule payload is cached briefly in Redis; a cache miss falls
// through to PostgreSQL and self-heals the cache.
func (s *ScheduleService) GetSchedule(ctx context.Context, scheduleID uuid.UUID, studentID string) (*LobbyExam, error) {
	sched, err := s.getCachedSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !sched.IsActive {
		return nil, ErrScheduleWithdrawn
	}

	attempted, err := s.resultRepo.HasAttempted(ctx, studentID, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("check attempt history: %w", err)
	}

	return &LobbyExam{
		ExamSchedule: *sched,
		Access:       session.Resolve(sched, time.Now(), attempted),
	}, nil
}

func (s *ScheduleService) getCachedSchedule(ctx context.Context, scheduleID uuid.UUID) (*model.ExamSchedule, error) {
	key := config.CacheKey.SchedulePayloadKey(scheduleID.String())

	val, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		var sched model.ExamSchedule
		if jsonErr := json.Unmarshal([]byte(val), &sched); jsonErr == nil {
			return &sched, nil
		}
		// Corrupt cache entry. Fall through to the DB and overwrite it.
	} else if !errors.Is(err, redis.Nil) {
		// Real Redis error. The DB still answers.
	}

	sched, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	if data, jsonErr := json.Marshal(sched); jsonErr == nil {
		_ = s.rdb.Set(ctx, key, data, schedulePayloadTTL).Err()
	}

	return sched, nil
}

// CreateSchedule publishes a new exam schedule authored by an instructor.
func (s *ScheduleService) CreateSchedule(ctx context.Context, createdBy string, req *model.CreateScheduleRequest) (*model.ExamSchedule, error) {
	sched := &model.ExamSchedule{
		CourseID:        req.CourseID,
		Title:           req.Title,
		Description:     req.Description,
		Topic:           req.Topic,
		CreatedBy:       createdBy,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationSeconds: req.DurationSeconds,
		QuestionCount:   req.QuestionCount,
		StrictMode:      req.StrictMode,
	}

	if err := s.scheduleRepo.Create(ctx, sched); err != nil {
		return nil, fmt.Errorf("create schedule: %w", err)
	}

	return sched, nil
}

// DeactivateSchedule withdraws a schedule from the lobby.
func (s *ScheduleService) DeactivateSchedule(ctx context.Context, scheduleID uuid.UUID) error {
	if err := s.scheduleRepo.Deactivate(ctx, scheduleID); err != nil {
		return fmt.Errorf("deactivate schedule: %w", err)
	}
	// Drop the cached payload so the lobby stops serving it immediately.
	_ = s.rdb.Del(ctx, config.CacheKey.SchedulePayloadKey(scheduleID.String())).Err()
	return nil
}

// GetResults returns every finalized result for a schedule, for the
// instructor result sheet.
func (s *ScheduleService) GetResults(ctx context.Context, scheduleID uuid.UUID) ([]model.QuizResult, error) {
	return s.resultRepo.ListByExam(ctx, scheduleID)
}
