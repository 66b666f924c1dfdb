package id

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	tests := []struct {
		prefix string
	}{
		{EntryPrefix},
		{ViewPrefix},
		{SessionPrefix},
	}

	for _, tt := range tests {
		id := gen.GenerateWithPrefix(tt.prefix)

		if !strings.HasPrefix(id, tt.prefix+"_") {
			t.Errorf("ID should start with '%s_', got: %s", tt.prefix, id)
		}
		if !HasPrefix(id, tt.prefix) {
			t.Errorf("HasPrefix should accept %s", id)
		}
	}
}

func TestTypedIDs(t *testing.T) {
	ids := map[string]string{
		EntryPrefix:   string(NewEntryID()),
		ViewPrefix:    string(NewViewID()),
		SessionPrefix: string(NewSessionID()),
	}

	for prefix, id := range ids {
		parts := strings.Split(id, "_")
		if len(parts) != 2 {
			t.Fatalf("ID should have format 'prefix_ulid', got: %s", id)
		}
		if parts[0] != prefix {
			t.Errorf("Expected prefix '%s', got '%s'", prefix, parts[0])
		}
		if len(parts[1]) != 26 {
			t.Errorf("ULID should be 26 characters, got %d in ID: %s", len(parts[1]), id)
		}
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(NewGenerator().GenerateString()) {
		t.Error("Generated ULID should be valid")
	}

	for _, id := range []string{"", "invalid", "zzzzzzzzzzzzzzzzzzzzzzzzzzz"} {
		if IsValid(id) {
			t.Errorf("ID should be invalid: %s", id)
		}
	}

	if HasPrefix("ent_invalid", EntryPrefix) {
		t.Error("HasPrefix should reject a malformed ULID")
	}
	if HasPrefix(string(NewEntryID()), SessionPrefix) {
		t.Error("HasPrefix should reject the wrong prefix")
	}
}

func TestTimestamp(t *testing.T) {
	before := time.Now().UnixMilli()
	id := string(NewSessionID())
	after := time.Now().UnixMilli()

	ts, err := Timestamp(id)
	if err != nil {
		t.Fatalf("Failed to extract timestamp: %v", err)
	}
	if ms := ts.UnixMilli(); ms < before || ms > after {
		t.Errorf("Timestamp should be between %d and %d ms, got %d ms", before, after, ms)
	}

	if _, err := Timestamp("sess_nope"); err == nil {
		t.Error("expected error for malformed ID")
	}
}

func TestMonotonicWithinMillisecond(t *testing.T) {
	gen := NewGenerator()

	prev := gen.GenerateString()
	for i := 0; i < 1000; i++ {
		next := gen.GenerateString()
		if next <= prev {
			t.Fatalf("IDs should increase: %s should be > %s", next, prev)
		}
		prev = next
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	const goroutines = 50
	const idsPerGoroutine = 100

	var wg sync.WaitGroup
	idChan := make(chan EntryID, goroutines*idsPerGoroutine)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < idsPerGoroutine; j++ {
				idChan <- gen.NewEntryID()
			}
		}()
	}

	wg.Wait()
	close(idChan)

	seen := make(map[EntryID]bool)
	for id := range idChan {
		if seen[id] {
			t.Errorf("Duplicate ID found in concurrent generation: %s", id)
		}
		seen[id] = true
	}

	if len(seen) != goroutines*idsPerGoroutine {
		t.Errorf("Expected %d unique IDs, got %d", goroutines*idsPerGoroutine, len(seen))
	}
}

func BenchmarkNewEntryID(b *testing.B) {
	gen := NewGenerator()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = gen.NewEntryID()
	}
}
