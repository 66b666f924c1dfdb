// Package id provides ULID generation for the browser backend.
//
// Identifiers are prefixed by kind so they stay readable in logs:
//   - ent_*: a filesystem entry within one view
//   - view_*: one directory view (engine instance)
//   - sess_*: an API session holding a navigation stack
//
// ULIDs sort by creation time, so listing sessions by id lists them in the
// order they were opened.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Typed IDs
// ============================================================================

// EntryID identifies a filesystem entry within one view
type EntryID string

// ViewID identifies a directory view
type ViewID string

// SessionID identifies an API session
type SessionID string

const (
	EntryPrefix   = "ent"
	ViewPrefix    = "view"
	SessionPrefix = "sess"
	TracePrefix   = "trace"
)

// ============================================================================
// Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic
// ordering inside the same millisecond
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source,
// useful for deterministic tests
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewEntryID generates a new entry ID
func (g *Generator) NewEntryID() EntryID {
	return EntryID(g.GenerateWithPrefix(EntryPrefix))
}

// NewEntryID generates a new entry ID from the default generator
func NewEntryID() EntryID { return Default().NewEntryID() }

// NewViewID generates a new view ID
func NewViewID() ViewID {
	return ViewID(Default().GenerateWithPrefix(ViewPrefix))
}

// NewSessionID generates a new session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewTraceID generates a new request trace ID
func NewTraceID() string {
	return Default().GenerateWithPrefix(TracePrefix)
}

func (id EntryID) String() string   { return string(id) }
func (id ViewID) String() string    { return string(id) }
func (id SessionID) String() string { return string(id) }

// ============================================================================
// Validation
// ============================================================================

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// HasPrefix reports whether id is a valid ULID carrying the given prefix
func HasPrefix(id, prefix string) bool {
	rest, ok := strings.CutPrefix(id, prefix+"_")
	return ok && IsValid(rest)
}

// Timestamp extracts the creation time from a bare or prefixed ID
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
