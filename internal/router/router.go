package router

import (
	"time"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/handler"
	"github.com/edupro/proctor-backend/internal/middleware"
	"github.com/edupro/proctor-backend/internal/response"
	"github.com/edupro/proctor-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	Schedule *handler.ScheduleHandler
	Attempt  *handler.AttemptHandler
	Guardian *handler.GuardianHandler
	Monitor  *handler.MonitorHandler
	System   *handler.SystemHandler
	WS       *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally. SSE and WebSocket routes are
	// skipped inside the middleware.
	router.Use(middleware.Brotli())

	// Probes.
	router.GET("/health", handlers.System.Health)
	router.GET("/ready", handlers.System.Ready)

	// Rate limiter for the token endpoint (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/token", handlers.Auth.IssueToken)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/schedules", handlers.Schedule.GetLobby)
		studentAPI.GET("/schedules/:schedule_id", handlers.Schedule.GetSchedule)
		studentAPI.POST("/schedules/:schedule_id/attempts", handlers.Attempt.StartAttempt)
		studentAPI.GET("/schedules/:schedule_id/attempts", handlers.Attempt.GetAttempt)
		studentAPI.DELETE("/schedules/:schedule_id/attempts", handlers.Attempt.AbandonAttempt)
		studentAPI.GET("/results", handlers.Attempt.GetResults)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/attempts/:schedule_id/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Guardian Group ─────────────────────────────────────────────
	guardianAPI := router.Group("/api/v1/guardian")
	guardianAPI.Use(middleware.RequireGuardianJWT(authService))
	{
		guardianAPI.GET("/alerts", handlers.Guardian.ListAlerts)
		guardianAPI.POST("/alerts/:alert_id/read", handlers.Guardian.MarkAlertRead)
		guardianAPI.GET("/notifications", handlers.Guardian.ListNotifications)
		guardianAPI.POST("/notifications/:notification_id/read", handlers.Guardian.MarkNotificationRead)
	}

	// ─── 5. Instructor Group ───────────────────────────────────────────
	instructorAPI := router.Group("/api/v1/instructor")
	instructorAPI.Use(middleware.RequireInstructorJWT(authService))
	{
		instructorAPI.POST("/schedules", handlers.Schedule.CreateSchedule)
		instructorAPI.DELETE("/schedules/:schedule_id", handlers.Schedule.DeactivateSchedule)
		instructorAPI.GET("/schedules/:schedule_id/results", handlers.Schedule.GetScheduleResults)
		instructorAPI.GET("/schedules/:schedule_id/monitor", handlers.Monitor.MonitorScheduleSSE)
		instructorAPI.GET("/system/queues", handlers.System.QueueDepths)
		instructorAPI.POST("/students/:student_id/session/reset", handlers.Auth.ResetStudentSession)
	}

	return router
}
