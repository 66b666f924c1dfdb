package browser

import (
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/filebrowser/internal/shared/id"
)

const (
	DefaultSearchRoot    = "/"
	DefaultBatchSize     = 256
	DefaultFlushInterval = 100 * time.Millisecond
)

// DefaultExcludes are pseudo filesystems a root search lists but never enters.
var DefaultExcludes = []string{"/proc", "/sys", "/dev"}

type options struct {
	logger         *zap.Logger
	metrics        *monitoring.Metrics
	searchRoot     string
	batchSize      int
	flushInterval  time.Duration
	excludes       []string
	newFileContent []byte
	now            func() time.Time
	ids            *id.Generator
}

func defaultOptions() options {
	return options{
		logger:        zap.NewNop(),
		searchRoot:    DefaultSearchRoot,
		batchSize:     DefaultBatchSize,
		flushInterval: DefaultFlushInterval,
		excludes:      DefaultExcludes,
		now:           time.Now,
		ids:           id.Default(),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a Lister, Searcher, Engine or Navigator.
type Option func(*options)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records load, search and mutation metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithSearchRoot sets where root-scope searches start.
func WithSearchRoot(root string) Option {
	return func(o *options) {
		if root != "" {
			o.searchRoot = root
		}
	}
}

// WithSearchBatch sets how many discovered entries are committed at once and
// the longest a partial batch waits before it is committed.
func WithSearchBatch(size int, interval time.Duration) Option {
	return func(o *options) {
		if size > 0 {
			o.batchSize = size
		}
		if interval > 0 {
			o.flushInterval = interval
		}
	}
}

// WithExcludes replaces the doublestar patterns of directories a search does
// not descend into.
func WithExcludes(patterns ...string) Option {
	return func(o *options) { o.excludes = patterns }
}

// WithNewFileContent sets the content written by CreateFile.
func WithNewFileContent(content []byte) Option {
	return func(o *options) { o.newFileContent = content }
}

// WithClock replaces the time source used for metadata fallbacks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator replaces the entry id generator.
func WithIDGenerator(g *id.Generator) Option {
	return func(o *options) {
		if g != nil {
			o.ids = g
		}
	}
}
