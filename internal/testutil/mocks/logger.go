package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// LogEntry is one message captured by Logger.
type LogEntry struct {
	Level   ports.Level
	Message string
	Fields  []ports.Field
}

// Logger records every message regardless of level.
type Logger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	fields  []ports.Field
	level   ports.Level
}

// NewLogger creates a recording Logger.
func NewLogger() *Logger {
	return &Logger{mu: &sync.Mutex{}, entries: &[]LogEntry{}, level: ports.LevelDebug}
}

// Debug records a debug message.
func (l *Logger) Debug(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelDebug, msg, fields)
}

// Info records an informational message.
func (l *Logger) Info(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelInfo, msg, fields)
}

// Warn records a warning.
func (l *Logger) Warn(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelWarn, msg, fields)
}

// Error records an error.
func (l *Logger) Error(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelError, msg, fields)
}

// With returns a Logger sharing the same entry list with extra fields.
func (l *Logger) With(fields ...ports.Field) ports.Logger {
	merged := make([]ports.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{mu: l.mu, entries: l.entries, fields: merged, level: l.level}
}

// Level returns the configured level; it does not filter recording.
func (l *Logger) Level() ports.Level {
	return l.level
}

// SetLevel sets the reported level.
func (l *Logger) SetLevel(level ports.Level) {
	l.level = level
}

// Entries returns a copy of all recorded entries.
func (l *Logger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(*l.entries))
	copy(out, *l.entries)
	return out
}

// Messages returns the messages recorded at level.
func (l *Logger) Messages(level ports.Level) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Contains reports whether any message at level contains substr.
func (l *Logger) Contains(level ports.Level, substr string) bool {
	for _, msg := range l.Messages(level) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func (l *Logger) record(level ports.Level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := make([]ports.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	*l.entries = append(*l.entries, LogEntry{Level: level, Message: msg, Fields: all})
}

// Ensure Logger implements ports.Logger.
var _ ports.Logger = (*Logger)(nil)
