package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/GriffinCanCode/filebrowser/internal/api/http"
	"github.com/GriffinCanCode/filebrowser/internal/api/middleware"
	"github.com/GriffinCanCode/filebrowser/internal/api/ws"
	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
	"github.com/GriffinCanCode/filebrowser/internal/domain/session"
	"github.com/GriffinCanCode/filebrowser/internal/domain/viewer"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/config"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	handler  http.Handler
	sessions *session.Manager
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// Option customizes server assembly.
type Option func(*options)

type options struct {
	fs     filesystem.FileSystem
	logger *logging.Logger
}

// WithFileSystem serves fsys instead of the host filesystem.
func WithFileSystem(fsys filesystem.FileSystem) Option {
	return func(o *options) { o.fs = fsys }
}

// WithLogger uses logger instead of building one from the configuration.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.FromConfig(cfg.Logging))
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	fsys := o.fs
	if fsys == nil {
		fsys = filesystem.NewLocal()
	}

	logger.Info("Initializing file browser server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("start_dir", cfg.Browser.StartDir),
		zap.String("search_root", cfg.Browser.SearchRoot),
	)

	// Private registry so repeated construction in tests never collides.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetricsWith(registry)

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowOrigins,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}
	if err := corsConfig.Validate(); err != nil {
		return nil, err
	}

	table, err := viewerTable(cfg.Browser.ViewersFile)
	if err != nil {
		return nil, err
	}
	routerOpts := []viewer.Option{viewer.WithLogger(logger.Component("viewer"))}
	if detector, ok := fsys.(filesystem.ContentDetector); ok {
		routerOpts = append(routerOpts, viewer.WithDetector(detector))
	}
	viewers := viewer.NewRouter(table, routerOpts...)

	sessions := session.NewManager(fsys,
		session.WithLogger(logger.Logger),
		session.WithMetrics(metrics),
		session.WithBrowserOptions(
			browser.WithLogger(logger.Logger),
			browser.WithMetrics(metrics),
			browser.WithSearchRoot(cfg.Browser.SearchRoot),
			browser.WithSearchBatch(cfg.Browser.SearchBatch, cfg.Browser.SearchFlush),
			browser.WithExcludes(cfg.Browser.SearchExclude...),
			browser.WithNewFileContent([]byte(cfg.Browser.NewFileTemplate)),
		),
	)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.Logger(logger.Component("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(corsConfig))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Register routes
	httpapi.NewHandlers(sessions, viewers, metrics, cfg.Browser.StartDir, logger.Logger).Register(router)
	ws.NewHandler(sessions, metrics, logger.Logger).Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		handler:  compress(router),
		sessions: sessions,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// compress gzips responses except WebSocket streams, which must stay
// hijackable.
func compress(router http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/stream") {
			router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

func viewerTable(path string) (viewer.Table, error) {
	raw, err := config.LoadViewers(path)
	if err != nil {
		return nil, err
	}
	overrides, err := viewer.ParseTable(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid viewers file %s: %w", path, err)
	}
	return viewer.DefaultTable().Merge(overrides), nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Sessions returns the session manager.
func (s *Server) Sessions() *session.Manager { return s.sessions }

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails. On cancellation in-flight requests get the configured
// shutdown timeout to finish.
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if idle := s.config.Server.SessionIdle; idle > 0 {
		g.Go(func() error {
			s.sweep(gctx, idle)
			return nil
		})
	}

	err := g.Wait()
	s.Close()
	return err
}

// sweep closes idle sessions until ctx is done.
func (s *Server) sweep(ctx context.Context, idle time.Duration) {
	ticker := time.NewTicker(max(idle/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.sessions.Sweep(idle); n > 0 {
				s.logger.Info("Closed idle sessions", zap.Int("count", n))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close releases every session and flushes the logger.
func (s *Server) Close() {
	s.sessions.CloseAll()
	s.logger.Close()
}
