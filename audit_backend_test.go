// audit_backend_test.go: Tests for the SQLite and JSONL audit backends
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for tests
)

func testEvents() []ParseEvent {
	ok := newParseEvent("ship", []string{"frigate", "1"}, nil)
	bad := newParseEvent("ship", []string{"--warp"}, &ArgError{Kind: KindUnrecognizedSwitch, Token: "--warp", Index: 0})
	ok.Checksum = checksum(ok)
	bad.Checksum = checksum(bad)
	return []ParseEvent{ok, bad}
}

func TestCreateAuditBackend_Selection(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		file string
		want string
	}{
		{"audit.jsonl", "jsonl"},
		{"audit.db", "sqlite"},
		{"nested/dir/audit.sqlite", "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			backend, err := createAuditBackend(AuditConfig{OutputFile: filepath.Join(dir, tt.file)})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			defer func() { _ = backend.Close() }()

			stats, err := backend.Stats()
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if stats.Backend != tt.want {
				t.Errorf("Expected %s backend, got %s", tt.want, stats.Backend)
			}
		})
	}
}

func TestSQLiteBackend_WriteAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	backend, err := newSQLiteBackend(path)
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer func() { _ = backend.Close() }()

	if err := backend.Write(testEvents()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := backend.Flush(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	var kind, dest string
	var count int
	err = db.QueryRow(`SELECT error_kind, COUNT(*) FROM parse_events WHERE outcome = ? GROUP BY error_kind`,
		OutcomeError).Scan(&kind, &count)
	if err != nil {
		t.Fatalf("Failed to query database: %v", err)
	}
	if kind != KindUnrecognizedSwitch.String() || count != 1 {
		t.Errorf("Expected one %s row, got %d of %q", KindUnrecognizedSwitch, count, kind)
	}
	if err := db.QueryRow(`SELECT COALESCE(dest, '') FROM parse_events WHERE outcome = ?`, OutcomeOK).Scan(&dest); err != nil {
		t.Fatalf("Failed to query database: %v", err)
	}
	if dest != "" {
		t.Errorf("Expected no dest for a successful parse, got %q", dest)
	}
}

func TestSQLiteBackend_ConcurrentWrites(t *testing.T) {
	backend, err := newSQLiteBackend(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer func() { _ = backend.Close() }()

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- backend.Write(testEvents())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("Concurrent write failed: %v", err)
		}
	}

	stats, err := backend.Stats()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.TotalEvents != 2*writers {
		t.Errorf("Expected %d events, got %d", 2*writers, stats.TotalEvents)
	}
	if stats.EventsByCode[ErrCodeUnrecognizedSwitch] != writers {
		t.Errorf("Expected %d coded events, got %d", writers, stats.EventsByCode[ErrCodeUnrecognizedSwitch])
	}
}

func TestSQLiteBackend_Closed(t *testing.T) {
	backend, err := newSQLiteBackend(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := backend.Close(); err != nil {
		t.Errorf("A second Close must be a no-op: %v", err)
	}
	if err := backend.Write(testEvents()); err == nil {
		t.Error("Expected error writing to a closed backend")
	}
	if _, err := backend.Stats(); err == nil {
		t.Error("Expected error reading stats from a closed backend")
	}
}

func TestJSONLBackend_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	backend, err := newJSONLBackend(path)
	if err != nil {
		t.Fatalf("Failed to create JSONL backend: %v", err)
	}
	defer func() { _ = backend.Close() }()

	if err := backend.Write(testEvents()[:1]); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 -- test file
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	_, _ = f.WriteString("{not json\n")
	_ = f.Close()
	if err := backend.Write(testEvents()[1:]); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stats, err := backend.Stats()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.TotalEvents != 2 {
		t.Errorf("Expected 2 events, got %d", stats.TotalEvents)
	}

	if err := backend.Close(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := backend.Write(testEvents()); err == nil {
		t.Error("Expected error writing to a closed backend")
	}
	if err := backend.Flush(); err != nil {
		t.Errorf("Flush after Close is a no-op: %v", err)
	}
}

func TestCreateAuditBackend_Fallback(t *testing.T) {
	dir := t.TempDir()
	// a directory where the database file should be makes SQLite fail
	dbPath := filepath.Join(dir, "audit.db")
	if err := os.Mkdir(dbPath, 0750); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	backend, err := createAuditBackend(AuditConfig{OutputFile: dbPath})
	if err != nil {
		t.Fatalf("Expected JSONL fallback, got %v", err)
	}
	defer func() { _ = backend.Close() }()

	stats, err := backend.Stats()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stats.Backend != "jsonl" {
		t.Errorf("Expected jsonl fallback, got %s", stats.Backend)
	}
	if _, err := os.Stat(filepath.Join(dir, "audit.jsonl")); err != nil {
		t.Errorf("Expected fallback file next to the database: %v", err)
	}
}
