package handler

import (
	"net/http"

	"github.com/edupro/proctor-backend/internal/middleware"
	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/response"
	"github.com/edupro/proctor-backend/internal/service"
	"github.com/edupro/proctor-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ScheduleHandler handles the student lobby and the instructor's thin
// schedule CRUD.
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

// GetLobby godoc
// GET /api/v1/student/schedules
// Returns the active schedules with the student's access decision.
func (h *ScheduleHandler) GetLobby(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	lobby, err := h.scheduleService.GetLobby(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if lobby == nil {
		lobby = []service.LobbyExam{}
	}

	response.Success(c, http.StatusOK, gin.H{"schedules": lobby})
}

// GetSchedule godoc
// GET /api/v1/student/schedules/:schedule_id
// Returns one schedule with the student's access decision.
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	scheduleID, err := uuid.Parse(c.Param("schedule_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	entry, err := h.scheduleService.GetSchedule(c.Request.Context(), scheduleID, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrScheduleNotFound)
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// CreateSchedule godoc
// POST /api/v1/instructor/schedules
// Publishes a new exam schedule.
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateScheduleRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sched, err := h.scheduleService.CreateSchedule(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, sched)
}

// DeactivateSchedule godoc
// DELETE /api/v1/instructor/schedules/:schedule_id
// Withdraws a schedule from the lobby.
func (h *ScheduleHandler) DeactivateSchedule(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("schedule_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.scheduleService.DeactivateSchedule(c.Request.Context(), scheduleID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "deactivated"})
}

// GetScheduleResults godoc
// GET /api/v1/instructor/schedules/:schedule_id/results
// Returns every finalized result for a schedule.
func (h *ScheduleHandler) GetScheduleResults(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("schedule_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	results, err := h.scheduleService.GetResults(c.Request.Context(), scheduleID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if results == nil {
		results = []model.QuizResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}
