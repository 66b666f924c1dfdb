package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func memfs() *filesystem.Memory {
	m := filesystem.NewMemory()
	m.SetClock(func() time.Time { return epoch })
	m.AddFileTimes("/data/b.txt", make([]byte, 2048), epoch, epoch.Add(time.Minute))
	m.AddFileTimes("/data/a.txt", []byte("hi"), epoch, epoch.Add(2*time.Minute))
	m.AddDir("/data/logs")
	m.AddFile("/data/logs/app.log", nil)
	m.AddFile("/data/logs/old.txt", nil)
	return m
}

func run(t *testing.T, m *filesystem.Memory, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(WithFileSystem(m))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

// lastFields returns the final column of each output row.
func lastFields(out string) []string {
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			names = append(names, fields[len(fields)-1])
		}
	}
	return names
}

func TestList(t *testing.T) {
	out, err := run(t, memfs(), "ls", "/data")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "logs"}, lastFields(out))
	assert.Contains(t, out, "2.00 KB")
	assert.Contains(t, out, "2 B")
	assert.True(t, strings.HasPrefix(strings.Split(out, "\n")[2], "d"))
}

func TestListQueryAndSort(t *testing.T) {
	out, err := run(t, memfs(), "ls", "/data", "--query", "TXT", "--sort", "modified")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt", "a.txt"}, lastFields(out))

	_, err = run(t, memfs(), "ls", "/data", "--sort", "size")
	assert.ErrorContains(t, err, "unknown sort option")
}

func TestListMissingDirectory(t *testing.T) {
	_, err := run(t, memfs(), "ls", "/nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/nowhere")
}

func TestSearch(t *testing.T) {
	out, err := run(t, memfs(), "search", "txt", "--root", "/data")
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/a.txt", "/data/b.txt", "/data/logs/old.txt"}, lastFields(out))
}

func TestSearchTimeoutPrintsPartialResults(t *testing.T) {
	m := memfs()
	release := m.Gate("/data/logs")
	defer release()

	out, err := run(t, m, "search", "--root", "/data", "--timeout", "100ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search incomplete")
	assert.NotContains(t, out, "app.log")
}

func TestChmod(t *testing.T) {
	m := memfs()
	out, err := run(t, m, "chmod", "/data/a.txt", "userexecute")
	require.NoError(t, err)
	assert.Equal(t, "/data/a.txt: rw-r--r-- -> rwxr--r-- (User Execute)\n", out)

	info, err := m.Lstat(context.Background(), "/data/a.txt")
	require.NoError(t, err)
	assert.Equal(t, uint32(0o744), uint32(info.Mode.Perm()))

	_, err = run(t, m, "chmod", "/data/a.txt", "everything")
	assert.ErrorContains(t, err, "unknown capability")
	_, err = run(t, m, "chmod", "/data/a.txt")
	assert.Error(t, err)
}

func TestEnvFileSetsStartDirectory(t *testing.T) {
	t.Setenv("BROWSER_START_DIR", "unused")
	require.NoError(t, os.Unsetenv("BROWSER_START_DIR"))

	env := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(env, []byte("BROWSER_START_DIR=/data/logs\n"), 0o644))

	out, err := run(t, memfs(), "ls", "--env-file", env)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.log", "old.txt"}, lastFields(out))
}
