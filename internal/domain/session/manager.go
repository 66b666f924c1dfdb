package session

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
	"github.com/GriffinCanCode/filebrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
	"github.com/GriffinCanCode/filebrowser/internal/shared/id"
)

// Session is one client's navigation stack.
type Session struct {
	ID        string
	CreatedAt time.Time

	nav      *browser.Navigator
	lastUsed atomic.Int64
}

// Navigator returns the session's view stack.
func (s *Session) Navigator() *browser.Navigator { return s.nav }

// Engine returns the view on top of the stack, or nil once closed.
func (s *Session) Engine() *browser.Engine { return s.nav.Current() }

// LastUsed returns when the session was last looked up.
func (s *Session) LastUsed() time.Time { return time.Unix(0, s.lastUsed.Load()) }

func (s *Session) touch(now time.Time) { s.lastUsed.Store(now.UnixNano()) }

// Info describes a session for listings.
type Info struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
	Path      []string  `json:"path"`
}

// Stats summarizes the manager.
type Stats struct {
	Active int `json:"active"`
}

// Manager owns the live sessions. Sessions are held in memory only and are
// closed on Delete, Sweep or CloseAll.
type Manager struct {
	sessions sync.Map
	count    atomic.Int64

	fs      filesystem.FileSystem
	opts    []browser.Option
	metrics *monitoring.Metrics
	log     *zap.Logger
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(log *zap.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMetrics reports the active session count.
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithClock replaces time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithBrowserOptions sets the options every view in every session opens with.
func WithBrowserOptions(opts ...browser.Option) Option {
	return func(m *Manager) { m.opts = append(m.opts, opts...) }
}

// NewManager creates a session manager over fsys.
func NewManager(fsys filesystem.FileSystem, opts ...Option) *Manager {
	m := &Manager{fs: fsys, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.Named("session")
	return m
}

// Create opens a session rooted at dir.
func (m *Manager) Create(ctx context.Context, dir string) (*Session, error) {
	nav, err := browser.NewNavigator(ctx, m.fs, dir, m.opts...)
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{ID: id.NewSessionID().String(), CreatedAt: now, nav: nav}
	s.touch(now)
	m.sessions.Store(s.ID, s)
	m.metrics.SetSessionsActive(int(m.count.Add(1)))

	m.log.Info("Session opened", zap.String("session_id", s.ID), zap.String("dir", dir))
	return s, nil
}

// Get returns the session with the given id and marks it used.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	v, ok := m.sessions.Load(sessionID)
	if !ok {
		return nil, false
	}
	s := v.(*Session)
	s.touch(m.now())
	return s, true
}

// Delete closes and forgets a session. It reports whether it existed.
func (m *Manager) Delete(sessionID string) bool {
	v, ok := m.sessions.LoadAndDelete(sessionID)
	if !ok {
		return false
	}
	m.close(v.(*Session), "deleted")
	return true
}

// List returns every session ordered by creation time.
func (m *Manager) List() []Info {
	var infos []Info
	m.sessions.Range(func(_, value any) bool {
		s := value.(*Session)
		infos = append(infos, Info{
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			LastUsed:  s.LastUsed(),
			Path:      s.nav.Path(),
		})
		return true
	})
	slices.SortFunc(infos, func(a, b Info) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return infos
}

// Stats returns session statistics.
func (m *Manager) Stats() Stats {
	return Stats{Active: int(m.count.Load())}
}

// Sweep closes sessions unused for at least idle and returns how many.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	closed := 0
	m.sessions.Range(func(key, value any) bool {
		s := value.(*Session)
		if s.LastUsed().After(cutoff) {
			return true
		}
		if _, ok := m.sessions.LoadAndDelete(key); ok {
			m.close(s, "idle")
			closed++
		}
		return true
	})
	return closed
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.sessions.Range(func(key, value any) bool {
		if _, ok := m.sessions.LoadAndDelete(key); ok {
			m.close(value.(*Session), "shutdown")
		}
		return true
	})
}

func (m *Manager) close(s *Session, reason string) {
	s.nav.Close()
	m.metrics.SetSessionsActive(int(m.count.Add(-1)))
	m.log.Info("Session closed", zap.String("session_id", s.ID), zap.String("reason", reason))
}
