package service

import (
	"context"
	"sync"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/repository"
	"github.com/google/uuid"
)

// MonitorService serves the instructor's live monitoring view of a
// running exam schedule.
type MonitorService struct {
	violationRepo *repository.ViolationRepository
	resultRepo    *repository.ResultRepository
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(violationRepo *repository.ViolationRepository, resultRepo *repository.ResultRepository) *MonitorService {
	return &MonitorService{violationRepo: violationRepo, resultRepo: resultRepo}
}

// ScheduleSnapshot holds per-student violation counts and the finalized
// results so far for one schedule.
type ScheduleSnapshot struct {
	ViolationCounts map[string]int64   `json:"violation_counts"`
	TotalViolations int64              `json:"total_violations"`
	Finalized       []model.QuizResult `json:"finalized"`
}

// GetScheduleSnapshot fetches violation counts and finalized results
// concurrently. Violation counts are best-effort; results are critical.
func (s *MonitorService) GetScheduleSnapshot(ctx context.Context, scheduleID uuid.UUID) (*ScheduleSnapshot, error) {
	snapshot := &ScheduleSnapshot{
		ViolationCounts: make(map[string]int64),
	}

	var (
		counts    map[string]int64
		results   []model.QuizResult
		countErr  error
		resultErr error
		wg        sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		counts, countErr = s.violationRepo.CountByStudent(ctx, scheduleID)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		results, resultErr = s.resultRepo.ListByExam(ctx, scheduleID)
	}()

	wg.Wait()

	if resultErr != nil {
		return nil, resultErr
	}
	snapshot.Finalized = results

	if countErr == nil && counts != nil {
		snapshot.ViolationCounts = counts
		for _, count := range counts {
			snapshot.TotalViolations += count
		}
	}

	return snapshot, nil
}
