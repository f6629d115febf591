package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/edupro/proctor-backend/internal/config"
	"github.com/edupro/proctor-backend/internal/middleware"
	"github.com/edupro/proctor-backend/internal/proctor"
	"github.com/edupro/proctor-backend/internal/service"
	"github.com/edupro/proctor-backend/internal/session"
	ws "github.com/edupro/proctor-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler runs the live attempt stream: every client action and
// proctoring signal arrives here and is enqueued onto the engine's
// serialized command path; state snapshots, control pushes and the
// finalization event flow back.
type WSHandler struct {
	attemptService *service.AttemptService
	cfg            *config.Config
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, cfg *config.Config, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		cfg:            cfg,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(cfg.AllowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/student/attempts/:schedule_id/stream
// Attaches to a live attempt started via the REST endpoint. The
// integrity monitor runs for the lifetime of the connection; the
// attempt itself survives a dropped connection and keeps counting down.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	scheduleID, err := uuid.Parse(c.Param("schedule_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule ID"})
		return
	}

	rawConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.NewConn(rawConn)
	defer conn.Close()

	studentID := claims.UserID

	engine, err := h.attemptService.Get(scheduleID, studentID)
	if err != nil {
		conn.WriteError("no live attempt for this schedule")
		return
	}

	wsLog := h.log.With().
		Str("student_id", studentID).
		Str("schedule_id", scheduleID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	bridge := ws.NewBridge(conn)
	defer bridge.Close()

	monitor := proctor.NewMonitor(proctor.MonitorConfig{
		Camera:             bridge,
		Platform:           bridge,
		Reporter:           engine,
		StrictMode:         engine.Schedule().StrictMode,
		SampleInterval:     h.cfg.CameraSampleInterval,
		LuminanceThreshold: h.cfg.LuminanceThreshold,
		Log:                wsLog,
	})
	monitor.Start(c.Request.Context())
	defer monitor.Stop()

	conn.WriteTyped(ws.QuestionsResponse{
		Event:     ws.EventQuestions,
		Questions: engine.Questions(),
	})
	h.pushState(conn, engine, monitor)

	stop := make(chan struct{})
	defer close(stop)
	go h.statePusher(conn, engine, monitor, stop, wsLog)

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			if msg.Index == nil || msg.Option == nil {
				conn.WriteError("answer requires index and option")
				continue
			}
			engine.SelectAnswer(*msg.Index, *msg.Option)
			h.pushState(conn, engine, monitor)

		case ws.ActionBookmark:
			if msg.Index == nil {
				conn.WriteError("bookmark requires index")
				continue
			}
			engine.ToggleBookmark(*msg.Index)
			h.pushState(conn, engine, monitor)

		case ws.ActionNavigate:
			if msg.Index == nil {
				conn.WriteError("navigate requires index")
				continue
			}
			engine.Navigate(*msg.Index)
			h.pushState(conn, engine, monitor)

		case ws.ActionSubmit:
			engine.Submit()

		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})

		case ws.ActionFrame, ws.ActionFullscreen, ws.ActionVisibility, ws.ActionCameraError:
			if err := bridge.Deliver(&msg); err != nil {
				conn.WriteError(err.Error())
			}

		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// finalEvent maps a finished engine's snapshot to the payload pushed to
// the client. An abandoned attempt stops its engine while the status is
// still ACTIVE; announcing that as finalized would tell the client the
// exam is over, so non-terminal statuses get no event and the connection
// simply closes.
func finalEvent(status session.Status) *ws.FinalizedResponse {
	if !status.Terminal() {
		return nil
	}
	return &ws.FinalizedResponse{
		Event:  ws.EventFinalized,
		Status: string(status),
	}
}

// statePusher streams one snapshot per second and the finalization
// event. Closing the connection after finalization unblocks the reader.
func (h *WSHandler) statePusher(conn *ws.Conn, engine *session.Engine, monitor *proctor.Monitor, stop <-chan struct{}, wsLog zerolog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return

		case <-engine.Done():
			snap := engine.Snapshot()
			if event := finalEvent(snap.Status); event != nil {
				conn.WriteTyped(event)
			}
			wsLog.Info().Str("status", string(snap.Status)).Msg("Attempt stream finished")
			conn.Close()
			return

		case <-ticker.C:
			h.pushState(conn, engine, monitor)
		}
	}
}

func (h *WSHandler) pushState(conn *ws.Conn, engine *session.Engine, monitor *proctor.Monitor) {
	conn.WriteTyped(ws.StateResponse{
		Event:     ws.EventState,
		State:     engine.Snapshot(),
		Suspended: monitor.Suspended(),
	})
}
