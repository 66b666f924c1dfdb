package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/tracing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig()))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := serve(r, http.MethodGet, "/test", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodOptions, "/test", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": "DELETE",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}

func TestCORSAllowList(t *testing.T) {
	r := gin.New()
	r.Use(CORS(CORSConfig{
		AllowOrigins:     []string{"https://Files.example.com/", "http://localhost:3000"},
		AllowCredentials: true,
		MaxAge:           time.Minute,
	}))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := serve(r, http.MethodGet, "/test", map[string]string{"Origin": "https://files.example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://files.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.True(t, strings.EqualFold(tracing.HeaderTraceID, w.Header().Get("Access-Control-Expose-Headers")))

	w = serve(r, http.MethodGet, "/test", map[string]string{"Origin": "https://evil.example.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CORSConfig
		wantErr bool
	}{
		{"default", DefaultCORSConfig(), false},
		{"origins", CORSConfig{AllowOrigins: []string{"http://localhost:3000", "https://a.example/"}}, false},
		{"empty", CORSConfig{}, true},
		{"wildcard with credentials", CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true}, true},
		{"no scheme", CORSConfig{AllowOrigins: []string{"localhost:3000"}}, true},
		{"path", CORSConfig{AllowOrigins: []string{"https://a.example/app"}}, true},
		{"ftp", CORSConfig{AllowOrigins: []string{"ftp://a.example"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/test", nil).Code)
	}
	w := serve(r, http.MethodGet, "/test", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limited")

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitForgetsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cs := newClients(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	cs.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		cs.limiter(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 5, cs.size())

	now = now.Add(30 * time.Second)
	cs.limiter("10.0.0.0")
	assert.Equal(t, 5, cs.size())

	now = now.Add(45 * time.Second)
	cs.limiter("10.0.0.9")
	assert.Equal(t, 2, cs.size())
}

func TestGlobalRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/test", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/test", nil).Code)
}

func TestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(tracing.HTTPMiddleware())
	r.Use(Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(r, http.MethodGet, "/ok", nil)
	serve(r, http.MethodGet, "/bad", nil)
	serve(r, http.MethodGet, "/boom", nil)

	entries := logs.All()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
		assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
		assert.Equal(t, "/boom", entries[2].ContextMap()["path"])
		assert.NotEmpty(t, entries[2].ContextMap()["trace_id"])
	}
}
