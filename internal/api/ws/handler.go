package ws

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GriffinCanCode/storefetch/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storefetch/internal/providers/download"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 512
)

// Watcher streams download snapshots
type Watcher interface {
	WatchDownloads() (<-chan download.Task, func())
}

// Message is one frame sent to or received from a client
type Message struct {
	Type      string         `json:"type"`
	Task      *download.Task `json:"task,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// Handler manages WebSocket connections
type Handler struct {
	watcher  Watcher
	metrics  *monitoring.Metrics
	log      *zap.Logger
	origins  []string
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler
func NewHandler(watcher Watcher, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{watcher: watcher, metrics: metrics, log: logger}
	h.upgrader.CheckOrigin = h.checkOrigin
	return h
}

// AllowOrigins admits cross-origin browser clients from origins besides the
// request's own host. "*" admits any origin.
func (h *Handler) AllowOrigins(origins []string) *Handler {
	h.origins = origins
	return h
}

// checkOrigin accepts non-browser clients, same-host pages and listed origins
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	h.log.Warn("websocket origin rejected", zap.String("origin", origin))
	return false
}

// HandleConnection upgrades the request and pushes every download snapshot
// until the client goes away
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	tasks, stop := h.watcher.WatchDownloads()
	defer stop()

	incoming := make(chan Message)
	closed := make(chan struct{})
	go h.readLoop(conn, incoming, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	if err := h.send(conn, Message{Type: "system", Message: "connected"}); err != nil {
		return
	}

	for {
		select {
		case task, ok := <-tasks:
			if !ok {
				return
			}
			if err := h.send(conn, Message{Type: "download", Task: &task}); err != nil {
				h.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case msg := <-incoming:
			reply := Message{Type: "pong"}
			if msg.Type != "ping" {
				reply = Message{Type: "error", Message: "unknown message type"}
			}
			if err := h.send(conn, reply); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

// readLoop owns all reads; the connection allows one reader and one writer
func (h *Handler) readLoop(conn *websocket.Conn, incoming chan<- Message, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}
		select {
		case incoming <- msg:
		case <-time.After(writeWait):
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msg Message) error {
	msg.Timestamp = time.Now().Unix()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		return err
	}
	if h.metrics != nil {
		h.metrics.RecordWSMessage("out", msg.Type)
	}
	return nil
}
