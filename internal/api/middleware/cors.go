package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/tracing"
)

// CORSConfig lists the browser origins allowed to drive sessions.
type CORSConfig struct {
	AllowOrigins     []string
	AllowCredentials bool
	MaxAge           time.Duration
}

var (
	corsMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}
	corsHeaders = []string{
		"Content-Type",
		"Content-Length",
		"Accept",
		"Accept-Encoding",
		"Origin",
		"Cache-Control",
		tracing.HeaderTraceID,
	}
)

// DefaultCORSConfig allows any origin without credentials.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		MaxAge:       12 * time.Hour,
	}
}

// Validate rejects origin lists the CORS handler cannot serve.
func (c CORSConfig) Validate() error {
	if len(c.AllowOrigins) == 0 {
		return errors.New("cors: at least one origin is required")
	}
	if c.allowAll() {
		if c.AllowCredentials {
			return errors.New("cors: credentials cannot be allowed for every origin")
		}
		return nil
	}
	for _, origin := range c.AllowOrigins {
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || strings.Trim(u.Path, "/") != "" {
			return fmt.Errorf("cors: invalid origin %q", origin)
		}
	}
	return nil
}

func (c CORSConfig) allowAll() bool {
	return slices.Contains(c.AllowOrigins, "*")
}

// origins returns the configured origins in the form browsers send them.
func (c CORSConfig) origins() []string {
	out := make([]string, 0, len(c.AllowOrigins))
	for _, origin := range c.AllowOrigins {
		origin = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(origin), "/"))
		if !slices.Contains(out, origin) {
			out = append(out, origin)
		}
	}
	return out
}

// CORS creates the CORS middleware. Websocket upgrades are covered and the
// trace ID header is readable by scripts.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     corsMethods,
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    []string{tracing.HeaderTraceID},
		AllowCredentials: cfg.AllowCredentials,
		AllowWebSockets:  true,
		MaxAge:           cfg.MaxAge,
	}
	if cfg.allowAll() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.origins()
	}
	return cors.New(c)
}
