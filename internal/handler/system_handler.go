package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SystemHandler serves liveness and readiness probes plus worker queue
// depths for operations.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client) *SystemHandler {
	return &SystemHandler{pool: pool, rdb: rdb, startTime: time.Now()}
}

// Health godoc
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready godoc
// GET /ready
// Pings PostgreSQL and Redis with a short deadline.
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
		return
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// QueueDepths godoc
// GET /api/v1/instructor/system/queues
// Reports the worker queue backlogs with a single pipelined round trip.
func (h *SystemHandler) QueueDepths(c *gin.Context) {
	ctx := c.Request.Context()

	pipe := h.rdb.Pipeline()
	violationsCmd := pipe.LLen(ctx, config.WorkerKey.PersistViolationsQueue)
	resultsCmd := pipe.LLen(ctx, config.WorkerKey.PersistResultsQueue)
	notifyCmd := pipe.LLen(ctx, config.WorkerKey.GuardianNotifyQueue)
	if _, err := pipe.Exec(ctx); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"queue_violations":      violationsCmd.Val(),
		"queue_results":         resultsCmd.Val(),
		"queue_guardian_notify": notifyCmd.Val(),
	})
}
