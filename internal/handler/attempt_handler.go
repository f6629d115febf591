package handler

import (
	"errors"
	"net/http"

	"github.com/edupro/proctor-backend/internal/middleware"
	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/response"
	"github.com/edupro/proctor-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttemptHandler handles attempt lifecycle endpoints. The live command
// feed runs over the WebSocket stream; these are the REST edges around it.
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// StartAttempt godoc
// POST /api/v1/student/schedules/:schedule_id/attempts
// Runs the availability gate and starts the attempt. Calling this means
// the student accepted the instructions.
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
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

	engine, err := h.attemptService.StartAttempt(c.Request.Context(), scheduleID, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAttemptNotOpen):
			response.Fail(c, http.StatusForbidden, response.ErrScheduleNotOpen)
		case errors.Is(err, service.ErrAttemptAlreadyLive):
			response.Fail(c, http.StatusConflict, response.ErrAttemptInProgress)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"state":     engine.Snapshot(),
		"questions": engine.Questions(),
	})
}

// GetAttempt godoc
// GET /api/v1/student/schedules/:schedule_id/attempts
// Returns the live attempt snapshot for reconnecting clients.
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
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

	engine, err := h.attemptService.Get(scheduleID, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoLiveAttempt)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"state":     engine.Snapshot(),
		"questions": engine.Questions(),
	})
}

// AbandonAttempt godoc
// DELETE /api/v1/student/schedules/:schedule_id/attempts
// Tears down a live attempt without finalizing it. The schedule stays
// open; no result row is produced.
func (h *AttemptHandler) AbandonAttempt(c *gin.Context) {
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

	if err := h.attemptService.Abandon(scheduleID, claims.UserID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoLiveAttempt)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "abandoned"})
}

// GetResults godoc
// GET /api/v1/student/results
// Returns the student's finalized quiz results.
func (h *AttemptHandler) GetResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.attemptService.Results(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if results == nil {
		results = []model.QuizResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}
