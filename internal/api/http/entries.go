package http

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
	"github.com/GriffinCanCode/filebrowser/internal/domain/permissions"
	"github.com/GriffinCanCode/filebrowser/internal/shared/utils"
)

// CreateEntry creates a file or folder in the current directory
func (h *Handlers) CreateEntry(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}

	var (
		path string
		err  error
	)
	switch req.Kind {
	case "", "file":
		path, err = e.CreateFile(c.Request.Context(), req.Name)
	case "folder":
		path, err = e.CreateFolder(c.Request.Context(), req.Name)
	default:
		badRequest(c, "kind must be file or folder")
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "path": path})
}

// DeleteEntry deletes the entry at ?path=
func (h *Handlers) DeleteEntry(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	if err := e.DeleteFile(c.Request.Context(), path); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": path})
}

type renameRequest struct {
	Path    string `json:"path" binding:"required"`
	NewName string `json:"new_name"`
}

// Rename renames an entry within its directory
func (h *Handlers) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "path is required")
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	to, err := e.RenameFile(c.Request.Context(), req.Path, req.NewName)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "path": to})
}

// Copy duplicates an entry next to itself. Without new_name the copy is
// named "<name> copy".
func (h *Handlers) Copy(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "path is required")
		return
	}
	if req.NewName == "" {
		req.NewName = utils.CopyName(filepath.Base(req.Path))
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	to, err := e.CopyFile(c.Request.Context(), req.Path, req.NewName)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "path": to})
}

// SetSelection edits the selection
func (h *Handlers) SetSelection(c *gin.Context) {
	var req struct {
		IDs  []string `json:"ids"`
		Mode string   `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	switch req.Mode {
	case "", "set":
		e.SetSelection(req.IDs...)
	case "add":
		e.Select(req.IDs...)
	case "remove":
		e.Deselect(req.IDs...)
	case "toggle":
		e.ToggleSelected(req.IDs...)
	case "clear":
		e.ClearSelection()
	default:
		badRequest(c, "mode must be one of set, add, remove, toggle, clear")
		return
	}
	respondSynced(c, e)
}

type deleteFailure struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// DeleteSelected deletes every selected entry. Individual failures do not
// stop the batch; they are listed in the response.
func (h *Handlers) DeleteSelected(c *gin.Context) {
	e, ok := engine(c)
	if !ok {
		return
	}
	report, err := e.DeleteSelected(c.Request.Context())
	if err != nil && len(report.Failed) == 0 {
		fail(c, err)
		return
	}

	failed := make([]deleteFailure, len(report.Failed))
	for i, f := range report.Failed {
		failed[i] = deleteFailure{ID: f.ID, Path: f.Path, Kind: browser.ErrorKind(f.Err), Error: f.Err.Error()}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": len(failed) == 0,
		"deleted": report.Deleted,
		"failed":  failed,
	})
}

type capabilityView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Set   bool   `json:"set"`
}

func permissionsView(path string, set permissions.Set) gin.H {
	caps := make([]capabilityView, 0, 9)
	for _, capability := range permissions.All() {
		caps = append(caps, capabilityView{
			Name:  capability.String(),
			Label: capability.Label(),
			Set:   set.Has(capability),
		})
	}
	return gin.H{
		"success":      true,
		"path":         path,
		"mode":         set.String(),
		"bits":         set.Mode(),
		"capabilities": caps,
	}
}

// Permissions returns the permission bits of ?path=
func (h *Handlers) Permissions(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	set, err := e.Permissions(c.Request.Context(), path)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, permissionsView(path, set))
}

// TogglePermission flips one permission bit
func (h *Handlers) TogglePermission(c *gin.Context) {
	var req struct {
		Path       string `json:"path" binding:"required"`
		Capability string `json:"capability" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "path and capability are required")
		return
	}
	capability, err := permissions.ParseCapability(req.Capability)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	set, err := e.TogglePermission(c.Request.Context(), req.Path, capability)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, permissionsView(req.Path, set))
}

// Viewer returns the viewer that should open ?path=. The entry must be part
// of the current view.
func (h *Handlers) Viewer(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	entry, found := e.Snapshot().LookupPath(filepath.Clean(path))
	if !found {
		fail(c, browser.ErrNotFound)
		return
	}
	decision := h.router.Decide(c.Request.Context(), entry)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"entry":    entry,
		"decision": decision,
	})
}

// Size returns the total size of the files below ?path=
func (h *Handlers) Size(c *gin.Context) {
	path, ok := queryPath(c)
	if !ok {
		return
	}
	e, ok := engine(c)
	if !ok {
		return
	}
	usage, err := e.DirectorySize(c.Request.Context(), path)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    path,
		"usage":   usage,
		"display": utils.FormatBytes(usage.Bytes),
	})
}

func queryPath(c *gin.Context) (string, bool) {
	path := c.Query("path")
	if path == "" {
		badRequest(c, "path query parameter is required")
		return "", false
	}
	return path, true
}
