package handler

import (
	"errors"
	"net/http"

	"github.com/edupro/proctor-backend/internal/model"
	"github.com/edupro/proctor-backend/internal/response"
	"github.com/edupro/proctor-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler issues and resets bearer tokens. Account verification is
// the platform gateway's job; this service only mints role-scoped
// identity for the exam surfaces.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// IssueToken godoc
// POST /api/v1/auth/token
// Mints a role-scoped JWT. Student tokens register a single-device
// session; a second login is rejected until the session is reset.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req model.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	var (
		token string
		err   error
	)

	switch service.TokenType(req.Role) {
	case service.TokenTypeStudent:
		token, err = h.authService.GenerateStudentToken(c.Request.Context(), req.UserID)
	case service.TokenTypeGuardian:
		token, err = h.authService.GenerateGuardianToken(req.UserID)
	case service.TokenTypeInstructor:
		token, err = h.authService.GenerateInstructorToken(req.UserID)
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionAlreadyActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionActive)
		case errors.Is(err, service.ErrUnknownStudent):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token})
}

// ResetStudentSession godoc
// POST /api/v1/instructor/students/:student_id/session/reset
// Clears a student's single-device session so they can log in again.
func (h *AuthHandler) ResetStudentSession(c *gin.Context) {
	studentID := c.Param("student_id")
	if studentID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.authService.ResetStudentSession(c.Request.Context(), studentID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "reset"})
}
