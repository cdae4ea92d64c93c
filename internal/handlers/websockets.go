package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"fireplace_cli/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

// streamBounds limits the ?interval of a status stream.
type streamBounds struct {
	def, min, max time.Duration
}

var defaultStreamBounds = streamBounds{
	def: 30 * time.Second,
	min: 10 * time.Second,
	max: 10 * time.Minute,
}

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Status stream
// @Description  WebSocket upgrade. Sends {"type":"status","data":Report} immediately and then every interval (10s-10m, default 30s).
// @Tags         fireplace
// @Param        interval     query  string  false  "Go duration, e.g. 45s"
// @Param        interval_ms  query  int     false  "Interval in milliseconds"
// @Param        token        query  string  false  "Bearer token when no Authorization header can be sent"
// @Router       /ws [get]
// @Security     BearerAuth
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := h.sendStatus(c.Request.Context(), conn); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}
	if h.log != nil {
		h.log.Debugw("ws_stream_started", "client", clientName(c), "interval", interval)
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendStatus(c.Request.Context(), conn); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=45s or ?interval_ms=45000. Values outside the
// bounds fall back to the default.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	b := h.stream

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= b.min && d <= b.max {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil {
			if d := time.Duration(v) * time.Millisecond; d >= b.min && d <= b.max {
				return d
			}
		}
	}

	return b.def
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// sendStatus writes the monitor's latest report, polling the appliance when
// nothing has been observed yet.
func (h *Handler) sendStatus(ctx context.Context, conn *websocket.Conn) error {
	rep, err := h.latestReport(ctx)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_status_failed", "err", err)
		}
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: "status", Data: rep})
}

func (h *Handler) latestReport(ctx context.Context) (service.Report, error) {
	if rep, ok := h.services.Latest(); ok {
		return rep, nil
	}
	return h.services.Poll(ctx)
}
