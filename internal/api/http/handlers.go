package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
	"github.com/GriffinCanCode/filebrowser/internal/domain/session"
	"github.com/GriffinCanCode/filebrowser/internal/domain/viewer"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/monitoring"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	sessions *session.Manager
	router   *viewer.Router
	metrics  *monitoring.Metrics
	startDir string
	log      *zap.Logger
}

// NewHandlers creates a new handler set. startDir is used when a session is
// opened without a path.
func NewHandlers(sessions *session.Manager, router *viewer.Router, metrics *monitoring.Metrics, startDir string, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		sessions: sessions,
		router:   router,
		metrics:  metrics,
		startDir: startDir,
		log:      log.Named("http"),
	}
}

// Register mounts the session routes on r. The stream route is mounted by the
// WebSocket handler.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/viewers", h.Viewers)

	r.GET("/sessions", h.ListSessions)
	r.POST("/sessions", h.CreateSession)

	s := r.Group("/sessions/:id", h.withSession)
	s.GET("", h.GetSession)
	s.DELETE("", h.DeleteSession)
	s.POST("/push", h.Push)
	s.POST("/pop", h.Pop)
	s.PUT("/sort", h.SetSort)
	s.PUT("/scope", h.SetScope)
	s.PUT("/query", h.SetQuery)
	s.POST("/reload", h.Reload)
	s.POST("/entries", h.CreateEntry)
	s.DELETE("/entries", h.DeleteEntry)
	s.POST("/rename", h.Rename)
	s.POST("/copy", h.Copy)
	s.PUT("/selection", h.SetSelection)
	s.POST("/selection/delete", h.DeleteSelected)
	s.GET("/permissions", h.Permissions)
	s.POST("/permissions/toggle", h.TogglePermission)
	s.GET("/viewer", h.Viewer)
	s.GET("/size", h.Size)
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  "filebrowser",
		"sessions": h.sessions.Stats(),
		"metrics":  h.metrics.Snapshot(),
	})
}

// Viewers returns the extension routing table
func (h *Handlers) Viewers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"viewers": h.router.Table(),
	})
}

const sessionKey = "session"

// withSession resolves the :id parameter and stores the session on the
// context for the route handlers.
func (h *Handlers) withSession(c *gin.Context) {
	s, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		sessionNotFound(c)
		return
	}
	c.Set(sessionKey, s)
	c.Next()
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// engine returns the session's top view, failing the request when the
// session was closed underneath it.
func engine(c *gin.Context) (*browser.Engine, bool) {
	e := current(c).Engine()
	if e == nil {
		fail(c, browser.ErrClosed)
		return nil, false
	}
	return e, true
}

// view renders a session and one of its snapshots.
func view(s *session.Session, snap *browser.Snapshot) gin.H {
	return gin.H{
		"success":    true,
		"session_id": s.ID,
		"path":       s.Navigator().Path(),
		"snapshot":   snap,
		"entries":    snap.Projection(),
	}
}

// respondSynced replies with the snapshot taken after every command already
// sent to e has been applied.
func respondSynced(c *gin.Context, e *browser.Engine) {
	snap, err := e.Sync(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(current(c), snap))
}
