package ws

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
	"github.com/GriffinCanCode/filebrowser/internal/domain/session"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/monitoring"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the HTTP middleware
	},
}

// Handler streams session snapshots over WebSocket connections
type Handler struct {
	sessions *session.Manager
	metrics  *monitoring.Metrics
	log      *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions *session.Manager, metrics *monitoring.Metrics, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{sessions: sessions, metrics: metrics, log: log.Named("ws")}
}

// Register mounts the stream route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/sessions/:id/stream", h.Stream)
}

type clientMessage struct {
	Type string `json:"type"`
}

// Stream handles WebSocket upgrade and pushes a message for every snapshot
// the session's top view publishes. The stream moves to the new top whenever
// the session pushes or pops a view; a "resync" message resends the current
// snapshot.
func (h *Handler) Stream(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "kind": "not_found", "error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	st := &stream{
		conn:    conn,
		id:      uuid.NewString(),
		session: s,
		metrics: h.metrics,
		log:     h.log,
	}
	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	st.log = st.log.With(zap.String("conn_id", st.id), zap.String("session_id", s.ID))
	st.log.Debug("Stream opened")
	st.run(c.Request.Context().Done())
	st.log.Debug("Stream closed")
}

type stream struct {
	conn    *websocket.Conn
	id      string
	session *session.Session
	metrics *monitoring.Metrics
	log     *zap.Logger
}

func (st *stream) run(cancelled <-chan struct{}) {
	done := make(chan struct{})
	defer close(done)
	incoming := st.read(done)

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	v, ok := st.follow()
	if !ok {
		return
	}
	defer func() { v.stop() }()

	refollow := func() bool {
		v.stop()
		v, ok = st.follow()
		return ok
	}

	for {
		select {
		case snap, open := <-v.updates:
			if !open {
				if !refollow() {
					return
				}
				continue
			}
			if st.sendSnapshot(snap) != nil {
				return
			}

		case <-v.moved:
			if !refollow() {
				return
			}

		case msg, open := <-incoming:
			if !open {
				return
			}
			switch msg.Type {
			case "ping":
				if st.send(gin.H{"type": "pong"}) != nil {
					return
				}
			case "resync":
				if !refollow() {
					return
				}
			default:
				if st.sendError("unknown message type") != nil {
					return
				}
			}

		case <-ping.C:
			_ = st.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if st.conn.WriteMessage(websocket.PingMessage, nil) != nil {
				return
			}

		case <-cancelled:
			return
		}
	}
}

// view is the subscription to one engine of the session's stack.
type view struct {
	updates <-chan *browser.Snapshot
	moved   <-chan struct{}
	stop    func()
}

// follow subscribes to the session's top view and sends its current
// snapshot. It reports false, after telling the client, once the session is
// closed.
func (st *stream) follow() (view, bool) {
	none := view{stop: func() {}}
	moved := st.session.Navigator().Changed()
	e := st.session.Engine()
	if e == nil {
		_ = st.send(gin.H{"type": "closed"})
		_ = st.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
			time.Now().Add(writeWait))
		return none, false
	}
	updates, stop := e.Subscribe()
	if st.sendSnapshot(e.Snapshot()) != nil {
		stop()
		return none, false
	}
	return view{updates: updates, moved: moved, stop: stop}, true
}

// read decodes client messages until the connection fails.
func (st *stream) read(done <-chan struct{}) <-chan clientMessage {
	out := make(chan clientMessage)
	go func() {
		defer close(out)
		for {
			_, data, err := st.conn.ReadMessage()
			if err != nil {
				return
			}
			var msg clientMessage
			if err := sonic.Unmarshal(data, &msg); err != nil {
				msg.Type = "invalid"
			}
			st.metrics.RecordWSMessage("in", msg.Type)
			select {
			case out <- msg:
			case <-done:
				return
			}
		}
	}()
	return out
}

func (st *stream) sendSnapshot(snap *browser.Snapshot) error {
	return st.send(gin.H{
		"type":          "snapshot",
		"connection_id": st.id,
		"session_id":    st.session.ID,
		"path":          st.session.Navigator().Path(),
		"snapshot":      snap,
		"entries":       snap.Projection(),
	})
}

func (st *stream) sendError(message string) error {
	return st.send(gin.H{"type": "error", "message": message})
}

func (st *stream) send(msg gin.H) error {
	msg["timestamp"] = time.Now().Unix()
	data, err := sonic.Marshal(msg)
	if err != nil {
		st.log.Error("Failed to encode message", zap.Error(err))
		return err
	}
	_ = st.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := st.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		st.log.Debug("Write failed", zap.Error(err))
		return err
	}
	st.metrics.RecordWSMessage("out", msg["type"].(string))
	return nil
}
