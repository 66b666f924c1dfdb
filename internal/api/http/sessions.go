package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
	"github.com/GriffinCanCode/filebrowser/internal/shared/utils"
)

type pathRequest struct {
	Path string `json:"path"`
}

// ListSessions lists open sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"sessions": h.sessions.List(),
		"stats":    h.sessions.Stats(),
	})
}

// CreateSession opens a session at the requested directory
func (h *Handlers) CreateSession(c *gin.Context) {
	var req pathRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	if req.Path == "" {
		req.Path = h.startDir
	}

	s, err := h.sessions.Create(c.Request.Context(), req.Path)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view(s, s.Engine().Snapshot()))
}

// GetSession returns the latest snapshot of the session's top view
func (h *Handlers) GetSession(c *gin.Context) {
	e, ok := engine(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view(current(c), e.Snapshot()))
}

// DeleteSession closes a session
func (h *Handlers) DeleteSession(c *gin.Context) {
	h.sessions.Delete(current(c).ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Push enters a directory
func (h *Handlers) Push(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Path == "" {
		badRequest(c, "path is required")
		return
	}

	e, err := current(c).Navigator().Push(c.Request.Context(), req.Path)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view(current(c), e.Snapshot()))
}

// Pop leaves the top directory. The root view is never popped.
func (h *Handlers) Pop(c *gin.Context) {
	s := current(c)
	_, popped := s.Navigator().Pop()
	e, ok := engine(c)
	if !ok {
		return
	}
	resp := view(s, e.Snapshot())
	resp["popped"] = popped
	c.JSON(http.StatusOK, resp)
}

// SetSort changes the sort option
func (h *Handlers) SetSort(c *gin.Context) {
	var req struct {
		Option string `json:"option" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "option is required")
		return
	}
	opt, err := browser.ParseSortOption(req.Option)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	e.SetSortOption(opt)
	respondSynced(c, e)
}

// SetScope changes the search scope
func (h *Handlers) SetScope(c *gin.Context) {
	var req struct {
		Scope string `json:"scope" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "scope is required")
		return
	}
	scope, err := browser.ParseSearchScope(req.Scope)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	e.SetSearchScope(scope)
	respondSynced(c, e)
}

// SetQuery changes the search query. An empty query clears the filter.
func (h *Handlers) SetQuery(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := utils.ValidateQuery(req.Query); err != nil {
		badRequest(c, err.Error())
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	e.SetSearchQuery(req.Query)
	respondSynced(c, e)
}

// Reload re-reads the current directory
func (h *Handlers) Reload(c *gin.Context) {
	e, ok := engine(c)
	if !ok {
		return
	}
	e.Reload()
	respondSynced(c, e)
}
