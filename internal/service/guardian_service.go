package service

import (
	"context"
	"fmt"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/repository"
)

// GuardianService serves the guardian dashboard surfaces.
type GuardianService struct {
	guardianRepo *repository.GuardianRepository
}

// NewGuardianService creates a new GuardianService.
func NewGuardianService(guardianRepo *repository.GuardianRepository) *GuardianService {
	return &GuardianService{guardianRepo: guardianRepo}
}

// ListAlerts returns a guardian's alerts, newest first.
func (s *GuardianService) ListAlerts(ctx context.Context, guardianID string) ([]model.GuardianAlert, error) {
	alerts, err := s.guardianRepo.ListAlerts(ctx, guardianID)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// ListNotifications returns a guardian's notifications, newest first.
func (s *GuardianService) ListNotifications(ctx context.Context, guardianID string) ([]model.GuardianNotification, error) {
	notifications, err := s.guardianRepo.ListNotifications(ctx, guardianID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkAlertRead flags one of the guardian's alerts as read.
func (s *GuardianService) MarkAlertRead(ctx context.Context, guardianID, alertID string) error {
	return s.guardianRepo.MarkAlertRead(ctx, guardianID, alertID)
}

// MarkNotificationRead flags one of the guardian's notifications as read.
func (s *GuardianService) MarkNotificationRead(ctx context.Context, guardianID, notificationID string) error {
	return s.guardianRepo.MarkNotificationRead(ctx, guardianID, notificationID)
}
