package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/response"
	"github.com/edupro/proctor-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// MonitorHandler streams a schedule's live proctoring feed to
// instructors over SSE: an initial snapshot, then forwarded violation
// events, with periodic count refreshes.
type MonitorHandler struct {
	rdb            *redis.Client
	monitorService *service.MonitorService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, monitorService *service.MonitorService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorScheduleSSE godoc
// GET /api/v1/instructor/schedules/:schedule_id/monitor
func (h *MonitorHandler) MonitorScheduleSSE(c *gin.Context) {
	scheduleID, err := uuid.Parse(c.Param("schedule_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	h.sendSnapshot(c, reqCtx, scheduleID)

	channelName := config.CacheKey.ScheduleMonitorChannel(scheduleID.String())
	pubsub := h.rdb.Subscribe(reqCtx, channelName)
	defer pubsub.Close()

	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	h.log.Info().Str("schedule_id", scheduleID.String()).Msg("Instructor attached to live monitor SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("schedule_id", scheduleID.String()).Msg("Instructor disconnected from live monitor SSE")
			return

		case msg := <-ch:
			// Forward raw violation JSON directly, no deserialization needed
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-refreshTicker.C:
			h.sendSnapshot(c, reqCtx, scheduleID)

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendSnapshot writes one full counts-and-results SSE event. Scoped
// timeout so a slow query never stalls the stream.
func (h *MonitorHandler) sendSnapshot(c *gin.Context, parentCtx context.Context, scheduleID uuid.UUID) {
	ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
	defer cancel()

	snapshot, err := h.monitorService.GetScheduleSnapshot(ctx, scheduleID)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to fetch schedule snapshot")
		return
	}

	c.SSEvent("message", map[string]interface{}{
		"type": "snapshot",
		"data": snapshot,
	})
	c.Writer.Flush()
}
