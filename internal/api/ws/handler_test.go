package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/GriffinCanCode/filebrowser/internal/domain/session"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
)

func setup(t *testing.T) (*httptest.Server, *session.Manager, *session.Session) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := filesystem.NewMemory()
	m.AddFile("/data/a.txt", nil)
	m.AddFile("/data/b.txt", nil)
	m.AddDir("/data/sub")

	log := zaptest.NewLogger(t)
	mgr := session.NewManager(m, session.WithLogger(log))
	s, err := mgr.Create(context.Background(), "/data")
	require.NoError(t, err)

	r := gin.New()
	NewHandler(mgr, monitoring.NewMetricsWith(prometheus.NewRegistry()), log).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		mgr.CloseAll()
		srv.Close()
	})
	return srv, mgr, s
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + sessionID + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads messages until one satisfies match.
func next(t *testing.T, conn *websocket.Conn, match func(map[string]any) bool) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var msg map[string]any
		require.NoError(t, sonic.Unmarshal(data, &msg))
		if match(msg) {
			return msg
		}
	}
}

func ofType(typ string) func(map[string]any) bool {
	return func(msg map[string]any) bool { return msg["type"] == typ }
}

func names(msg map[string]any) []string {
	var out []string
	for _, e := range msg["entries"].([]any) {
		out = append(out, e.(map[string]any)["name"].(string))
	}
	return out
}

func TestStreamSendsSnapshots(t *testing.T) {
	srv, _, s := setup(t)
	conn := dial(t, srv, s.ID)

	first := next(t, conn, ofType("snapshot"))
	assert.NotEmpty(t, first["connection_id"])
	assert.Equal(t, s.ID, first["session_id"])

	loaded := next(t, conn, func(msg map[string]any) bool {
		return msg["type"] == "snapshot" && !msg["snapshot"].(map[string]any)["is_searching"].(bool)
	})
	assert.Equal(t, []string{"a.txt", "b.txt", "sub"}, names(loaded))

	s.Engine().SetSearchQuery("b.t")
	filtered := next(t, conn, func(msg map[string]any) bool {
		return msg["type"] == "snapshot" && msg["snapshot"].(map[string]any)["search_query"] == "b.t"
	})
	assert.Equal(t, []string{"b.txt"}, names(filtered))

	s.Engine().SetSearchQuery("B")
	filtered = next(t, conn, func(msg map[string]any) bool {
		return msg["type"] == "snapshot" && msg["snapshot"].(map[string]any)["search_query"] == "B"
	})
	assert.Equal(t, []string{"b.txt", "sub"}, names(filtered))
}

func TestStreamAnswersPing(t *testing.T) {
	srv, _, s := setup(t)
	conn := dial(t, srv, s.ID)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	next(t, conn, ofType("pong"))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"shout"}`)))
	msg := next(t, conn, ofType("error"))
	assert.Equal(t, "unknown message type", msg["message"])
}

func TestStreamFollowsNavigation(t *testing.T) {
	srv, _, s := setup(t)
	conn := dial(t, srv, s.ID)
	next(t, conn, ofType("snapshot"))

	inDir := func(dir string) func(map[string]any) bool {
		return func(msg map[string]any) bool {
			return msg["type"] == "snapshot" && msg["snapshot"].(map[string]any)["directory"] == dir
		}
	}

	_, err := s.Navigator().Push(context.Background(), "/data/sub")
	require.NoError(t, err)
	pushed := next(t, conn, inDir("/data/sub"))
	assert.Equal(t, []any{"/data", "/data/sub"}, pushed["path"])

	s.Navigator().Pop()
	next(t, conn, inDir("/data"))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"resync"}`)))
	next(t, conn, inDir("/data"))
}

func TestStreamEndsWhenSessionCloses(t *testing.T) {
	srv, mgr, s := setup(t)
	conn := dial(t, srv, s.ID)
	next(t, conn, ofType("snapshot"))

	mgr.Delete(s.ID)
	next(t, conn, ofType("closed"))

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err)
}

func TestStreamUnknownSession(t *testing.T) {
	srv, _, _ := setup(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/sess_missing/stream"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
