// audit.go: Parse audit trail
//
// An AuditLogger records one ParseEvent per Parse call on parsers built
// with WithAuditor. Events are buffered and written in batches by a
// background flusher to a SQLite or JSONL backend. Each event carries a
// SHA-256 checksum for tamper detection.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// Outcome values recorded in ParseEvent.Outcome.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Auditor receives one event per Parse call.
type Auditor interface {
	RecordParse(event ParseEvent)
}

// ParseEvent describes a single Parse call.
type ParseEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Command    string    `json:"command"`
	Tokens     []string  `json:"tokens"`
	TokenCount int       `json:"token_count"`
	Outcome    string    `json:"outcome"`
	ErrorCode  string    `json:"error_code,omitempty"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Dest       string    `json:"dest,omitempty"`
	Message    string    `json:"message,omitempty"`
	ProcessID  int       `json:"process_id"`
	Checksum   string    `json:"checksum"`
}

// newParseEvent builds the event for a finished parse.
func newParseEvent(command string, tokens []string, err error) ParseEvent {
	ev := ParseEvent{
		Timestamp:  timecache.CachedTime(),
		Command:    command,
		Tokens:     append([]string(nil), tokens...),
		TokenCount: len(tokens),
		Outcome:    OutcomeOK,
		ProcessID:  os.Getpid(),
	}
	if err != nil {
		ev.Outcome = OutcomeError
		ev.Message = err.Error()
		if ec, ok := err.(errors.ErrorCoder); ok {
			ev.ErrorCode = string(ec.ErrorCode())
		}
		if ae, ok := err.(*ArgError); ok {
			ev.ErrorKind = ae.Kind.String()
			ev.Dest = ae.Dest
		}
	}
	return ev
}

// AuditConfig configures an AuditLogger.
type AuditConfig struct {
	Enabled       bool
	OutputFile    string // .jsonl selects the JSONL backend, anything else SQLite
	BufferSize    int
	FlushInterval time.Duration
	RedactValues  bool // replace non-switch tokens with "***"
}

// DefaultAuditConfig returns the default audit configuration.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:       true,
		OutputFile:    defaultAuditPath(),
		BufferSize:    64,
		FlushInterval: 2 * time.Second,
	}
}

// AuditLogger buffers parse events and writes them to a backend.
type AuditLogger struct {
	config      AuditConfig
	backend     auditBackend
	buffer      []ParseEvent
	bufferMu    sync.Mutex
	flushTicker *time.Ticker
	stopCh      chan struct{}
	closeOnce   sync.Once
}

// NewAuditLogger opens the backend selected by config.OutputFile and starts
// the background flusher when FlushInterval is positive.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	if config.BufferSize <= 0 {
		config.BufferSize = 1
	}
	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeAuditFailure, "failed to initialize audit backend").
			WithContext("output_file", config.OutputFile)
	}

	logger := &AuditLogger{
		config:  config,
		backend: backend,
		buffer:  make([]ParseEvent, 0, config.BufferSize),
		stopCh:  make(chan struct{}),
	}
	if config.FlushInterval > 0 {
		logger.flushTicker = time.NewTicker(config.FlushInterval)
		go logger.flushLoop()
	}
	return logger, nil
}

// RecordParse implements Auditor.
func (al *AuditLogger) RecordParse(event ParseEvent) {
	if al == nil || al.backend == nil || !al.config.Enabled {
		return
	}
	if al.config.RedactValues {
		event.Tokens = redactTokens(event.Tokens)
		if event.Message != "" {
			event.Message = redactedMessage(event)
		}
	}
	event.Checksum = checksum(event)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, event)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferUnsafe() // retried on the next flush
	}
	al.bufferMu.Unlock()
}

// Flush writes every buffered event.
func (al *AuditLogger) Flush() error {
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	if err := al.flushBufferUnsafe(); err != nil {
		return err
	}
	return al.backend.Flush()
}

// Stats returns backend statistics.
func (al *AuditLogger) Stats() (*AuditStats, error) {
	if err := al.Flush(); err != nil {
		return nil, err
	}
	return al.backend.Stats()
}

// Close stops the flusher, writes pending events and releases the
// backend. It is safe to call more than once.
func (al *AuditLogger) Close() error {
	var err error
	al.closeOnce.Do(func() {
		close(al.stopCh)
		if al.flushTicker != nil {
			al.flushTicker.Stop()
		}
		if ferr := al.Flush(); ferr != nil {
			err = errors.Wrap(ferr, ErrCodeAuditFailure, "failed to flush audit logger during close")
		}
		if cerr := al.backend.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, ErrCodeAuditFailure, "failed to close audit backend")
		}
	})
	return err
}

func (al *AuditLogger) flushLoop() {
	for {
		select {
		case <-al.flushTicker.C:
			_ = al.Flush()
		case <-al.stopCh:
			return
		}
	}
}

// flushBufferUnsafe writes the buffer (caller must hold bufferMu).
func (al *AuditLogger) flushBufferUnsafe() error {
	if len(al.buffer) == 0 {
		return nil
	}
	if err := al.backend.Write(al.buffer); err != nil {
		return fmt.Errorf("failed to write audit events to backend: %w", err)
	}
	al.buffer = al.buffer[:0]
	return nil
}

func checksum(ev ParseEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		ev.Timestamp.Format(time.RFC3339Nano),
		ev.Command, strings.Join(ev.Tokens, "\x00"), ev.Outcome, ev.ErrorCode)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(data)))
}

// VerifyChecksum reports whether ev still matches its checksum.
func VerifyChecksum(ev ParseEvent) bool {
	return ev.Checksum != "" && ev.Checksum == checksum(ev)
}

// redactedMessage rebuilds an error message from the fields that never
// carry user input.
func redactedMessage(ev ParseEvent) string {
	kind := ev.ErrorKind
	if kind == "" {
		kind = "parse failed"
	}
	ctx := make([]string, 0, 2)
	if ev.Dest != "" {
		ctx = append(ctx, "dest="+ev.Dest)
	}
	if ev.ErrorCode != "" {
		ctx = append(ctx, "code="+ev.ErrorCode)
	}
	if len(ctx) == 0 {
		return kind
	}
	return kind + " (" + strings.Join(ctx, ", ") + ")"
}

func redactTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		if isSwitchToken(t) {
			out[i] = t
		} else {
			out[i] = "***"
		}
	}
	return out
}
