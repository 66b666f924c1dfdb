package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/config"
)

// Logger is the root logger handed to the server and the CLI commands.
type Logger struct {
	*zap.Logger
}

// Config defines logger configuration.
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	OutputPaths []string
}

// FromConfig returns the logger configuration for a long-running server.
func FromConfig(cfg config.LogConfig) Config {
	return Config{Level: cfg.Level, Development: cfg.Development}
}

// ForCommand returns the logger configuration for a one-shot command. Such
// commands print results on stdout, so stderr only carries warnings unless
// verbose is set.
func ForCommand(cfg config.LogConfig, verbose bool) Config {
	c := FromConfig(cfg)
	c.Level = "warn"
	if verbose {
		c.Level = "debug"
	}
	return c
}

// New creates a logger. Production output is JSON, development output is a
// colored console format; both go to stderr unless OutputPaths says otherwise.
func New(cfg Config) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg.Sampling = nil
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.MessageKey = "message"
		zapCfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.DisableStacktrace = !cfg.Development
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// Wrap adapts an existing zap logger, such as zaptest's.
func Wrap(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{Logger: l}
}

// Component returns a named child logger for one subsystem.
func (l *Logger) Component(name string) *zap.Logger {
	return l.Named(name)
}

// Close flushes buffered entries. Errors from syncing a terminal are ignored.
func (l *Logger) Close() {
	_ = l.Sync()
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}
