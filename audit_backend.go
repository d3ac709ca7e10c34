// audit_backend.go: Storage backends for the parse audit trail
//
// SQLite is the default backend; files ending in .jsonl select the JSONL
// backend. When SQLite cannot be opened the logger falls back to a JSONL
// file next to the requested path.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// AuditStats summarizes the events stored by a backend.
type AuditStats struct {
	TotalEvents     int64            `json:"total_events"`
	EventsByOutcome map[string]int64 `json:"events_by_outcome"`
	EventsByCode    map[string]int64 `json:"events_by_code"`
	OldestEvent     *time.Time       `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time       `json:"newest_event,omitempty"`
	StorageSize     int64            `json:"storage_size_bytes"`
	Backend         string           `json:"backend"`
}

func newAuditStats(backend string) *AuditStats {
	return &AuditStats{
		EventsByOutcome: make(map[string]int64),
		EventsByCode:    make(map[string]int64),
		Backend:         backend,
	}
}

// auditBackend persists parse events.
type auditBackend interface {
	Write(events []ParseEvent) error
	Flush() error
	Stats() (*AuditStats, error)
	Close() error
}

func defaultAuditPath() string {
	return filepath.Join(os.TempDir(), "argparse", "parse-audit.db")
}

func createAuditBackend(config AuditConfig) (auditBackend, error) {
	path := config.OutputFile
	if path == "" {
		path = defaultAuditPath()
	}
	if filepath.Ext(path) == ".jsonl" {
		return newJSONLBackend(path)
	}

	backend, err := newSQLiteBackend(path)
	if err == nil {
		return backend, nil
	}
	fallback := strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl"
	jsonl, jsonlErr := newJSONLBackend(fallback)
	if jsonlErr != nil {
		return nil, fmt.Errorf("all audit backends failed - SQLite: %w, JSONL: %v", err, jsonlErr)
	}
	return jsonl, nil
}

// sqliteAuditBackend stores events in a parse_events table.
type sqliteAuditBackend struct {
	db         *sql.DB
	path       string
	insertStmt *sql.Stmt
	mu         sync.RWMutex
	closed     bool
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS parse_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp   TEXT NOT NULL,
	command     TEXT NOT NULL,
	tokens      TEXT NOT NULL,
	token_count INTEGER NOT NULL,
	outcome     TEXT NOT NULL,
	error_code  TEXT,
	error_kind  TEXT,
	dest        TEXT,
	message     TEXT,
	process_id  INTEGER,
	checksum    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_parse_events_timestamp ON parse_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_parse_events_outcome ON parse_events(outcome);
`

func newSQLiteBackend(path string) (*sqliteAuditBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit database directory: %w", err)
	}
	// WAL keeps readers from blocking the writer; busy_timeout covers
	// several processes sharing one database.
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}
	if _, err := db.Exec(auditSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}
	stmt, err := db.Prepare(`
	INSERT INTO parse_events (
		timestamp, command, tokens, token_count, outcome,
		error_code, error_kind, dest, message, process_id, checksum
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	return &sqliteAuditBackend{db: db, path: path, insertStmt: stmt}, nil
}

// Write inserts a batch inside one transaction.
func (s *sqliteAuditBackend) Write(events []ParseEvent) (err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("cannot write to closed SQLite audit backend")
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt := tx.Stmt(s.insertStmt)
	defer func() { _ = stmt.Close() }()

	for _, ev := range events {
		tokens, merr := json.Marshal(ev.Tokens)
		if merr != nil {
			return fmt.Errorf("failed to serialize tokens: %w", merr)
		}
		if _, err = stmt.Exec(
			ev.Timestamp.UTC().Format(time.RFC3339Nano),
			ev.Command,
			string(tokens),
			ev.TokenCount,
			ev.Outcome,
			ev.ErrorCode,
			ev.ErrorKind,
			ev.Dest,
			ev.Message,
			ev.ProcessID,
			ev.Checksum,
		); err != nil {
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit transaction: %w", err)
	}
	return nil
}

// Flush forces a WAL checkpoint.
func (s *sqliteAuditBackend) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to flush SQLite audit backend: %w", err)
	}
	return nil
}

// Stats aggregates the stored events.
func (s *sqliteAuditBackend) Stats() (*AuditStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, fmt.Errorf("SQLite audit backend is closed")
	}

	stats := newAuditStats("sqlite")
	if err := s.db.QueryRow("SELECT COUNT(*) FROM parse_events").Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("failed to count audit events: %w", err)
	}
	if err := s.groupCount("outcome", stats.EventsByOutcome); err != nil {
		return nil, err
	}
	if err := s.groupCount("error_code", stats.EventsByCode); err != nil {
		return nil, err
	}

	var oldest, newest sql.NullString
	if err := s.db.QueryRow("SELECT MIN(timestamp), MAX(timestamp) FROM parse_events").Scan(&oldest, &newest); err != nil {
		return nil, fmt.Errorf("failed to read audit time range: %w", err)
	}
	stats.OldestEvent = parseStatTime(oldest)
	stats.NewestEvent = parseStatTime(newest)

	if info, err := os.Stat(s.path); err == nil {
		stats.StorageSize = info.Size()
	}
	return stats, nil
}

func (s *sqliteAuditBackend) groupCount(column string, into map[string]int64) error {
	rows, err := s.db.Query(fmt.Sprintf(
		"SELECT %s, COUNT(*) FROM parse_events WHERE %s IS NOT NULL AND %s != '' GROUP BY %s",
		column, column, column, column))
	if err != nil {
		return fmt.Errorf("failed to group audit events by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan audit group: %w", err)
		}
		into[key] = n
	}
	return rows.Err()
}

func parseStatTime(v sql.NullString) *time.Time {
	if !v.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil
	}
	return &t
}

// Close checkpoints and closes the database. Safe to call more than once.
func (s *sqliteAuditBackend) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []string
	if err := s.insertStmt.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing SQLite audit backend: %s", strings.Join(errs, "; "))
	}
	return nil
}

// jsonlAuditBackend appends one JSON object per line.
type jsonlAuditBackend struct {
	file   *os.File
	path   string
	mu     sync.Mutex
	closed bool
}

func newJSONLBackend(path string) (*jsonlAuditBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create JSONL audit log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- audit path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL audit log file: %w", err)
	}
	return &jsonlAuditBackend{file: file, path: path}, nil
}

func (j *jsonlAuditBackend) Write(events []ParseEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return fmt.Errorf("cannot write to closed JSONL audit backend")
	}
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to serialize audit event: %w", err)
		}
		if _, err := j.file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write audit event to JSONL: %w", err)
		}
	}
	return nil
}

func (j *jsonlAuditBackend) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync JSONL audit file: %w", err)
	}
	return nil
}

// Stats reads the whole file back.
func (j *jsonlAuditBackend) Stats() (*AuditStats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	stats := newAuditStats("jsonl")
	f, err := os.Open(j.path) // #nosec G304 -- same file the backend writes
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL audit file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var ev ParseEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		stats.TotalEvents++
		stats.EventsByOutcome[ev.Outcome]++
		if ev.ErrorCode != "" {
			stats.EventsByCode[ev.ErrorCode]++
		}
		ts := ev.Timestamp
		if stats.OldestEvent == nil || ts.Before(*stats.OldestEvent) {
			stats.OldestEvent = &ts
		}
		if stats.NewestEvent == nil || ts.After(*stats.NewestEvent) {
			stats.NewestEvent = &ts
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSONL audit file: %w", err)
	}
	if info, err := f.Stat(); err == nil {
		stats.StorageSize = info.Size()
	}
	return stats, nil
}

func (j *jsonlAuditBackend) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	return j.file.Close()
}
