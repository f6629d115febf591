package handler

import (
	"net/http"

	"github.com/edupro/proctor-backend/internal/middleware"
	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/response"
	"github.com/edupro/proctor-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GuardianHandler serves the guardian dashboard endpoints.
type GuardianHandler struct {
	guardianService *service.GuardianService
}

// NewGuardianHandler creates a new GuardianHandler.
func NewGuardianHandler(guardianService *service.GuardianService) *GuardianHandler {
	return &GuardianHandler{guardianService: guardianService}
}

// ListAlerts godoc
// GET /api/v1/guardian/alerts
func (h *GuardianHandler) ListAlerts(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	alerts, err := h.guardianService.ListAlerts(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if alerts == nil {
		alerts = []model.GuardianAlert{}
	}

	response.Success(c, http.StatusOK, gin.H{"alerts": alerts})
}

// ListNotifications godoc
// GET /api/v1/guardian/notifications
func (h *GuardianHandler) ListNotifications(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	notifications, err := h.guardianService.ListNotifications(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if notifications == nil {
		notifications = []model.GuardianNotification{}
	}

	response.Success(c, http.StatusOK, gin.H{"notifications": notifications})
}

// MarkAlertRead godoc
// POST /api/v1/guardian/alerts/:alert_id/read
func (h *GuardianHandler) MarkAlertRead(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	alertID, err := uuid.Parse(c.Param("alert_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.guardianService.MarkAlertRead(c.Request.Context(), claims.UserID, alertID.String()); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}

// MarkNotificationRead godoc
// POST /api/v1/guardian/notifications/:notification_id/read
func (h *GuardianHandler) MarkNotificationRead(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	notificationID, err := uuid.Parse(c.Param("notification_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.guardianService.MarkNotificationRead(c.Request.Context(), claims.UserID, notificationID.String()); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "read"})
}
