package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/config"
)

func TestNewWritesJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")
	logger, err := New(Config{Level: "info", OutputPaths: []string{out}})
	require.NoError(t, err)

	for range 200 {
		logger.Component("browser").Info("Directory loaded", zap.Int("entries", 3))
	}
	logger.Debug("hidden")
	logger.Close()

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 200, "search progress must not be sampled away")
	assert.Contains(t, lines[0], `"message":"Directory loaded"`)
	assert.Contains(t, lines[0], `"logger":"browser"`)
	assert.Contains(t, lines[0], `"entries":3`)
	assert.Contains(t, lines[0], `"timestamp":`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestConfigForServerAndCommands(t *testing.T) {
	cfg := config.LogConfig{Level: "info", Development: true}

	assert.Equal(t, Config{Level: "info", Development: true}, FromConfig(cfg))
	assert.Equal(t, "warn", ForCommand(cfg, false).Level)
	assert.Equal(t, "debug", ForCommand(cfg, true).Level)
	assert.True(t, ForCommand(cfg, false).Development)
}

func TestWrap(t *testing.T) {
	l := zaptest.NewLogger(t)
	assert.Same(t, l, Wrap(l).Logger)
	require.NotNil(t, Wrap(nil).Logger)
	Wrap(nil).Component("x").Info("discarded")
}
