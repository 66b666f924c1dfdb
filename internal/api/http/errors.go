package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
)

// StatusClientClosedRequest is returned when the caller gave up first.
const StatusClientClosedRequest = 499

// statusFor maps the error taxonomy to an HTTP status.
func statusFor(kind string) int {
	switch kind {
	case "not_found":
		return http.StatusNotFound
	case "already_exists":
		return http.StatusConflict
	case "permission_denied":
		return http.StatusForbidden
	case "invalid_name", "not_directory", "invalid_request":
		return http.StatusBadRequest
	case "cancelled":
		return StatusClientClosedRequest
	case "unsupported":
		return http.StatusNotImplemented
	case "closed":
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error response and aborts the chain.
func fail(c *gin.Context, err error) {
	kind := browser.ErrorKind(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"kind":    kind,
		"error":   err.Error(),
	})
}

// badRequest rejects a malformed request.
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"kind":    "invalid_request",
		"error":   msg,
	})
}

func sessionNotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
		"success": false,
		"kind":    "not_found",
		"error":   "session not found",
	})
}
