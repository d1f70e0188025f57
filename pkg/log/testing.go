// Package log provides testing utilities for structured logging.
//
// TestLogger is the zerolog-backed Logger writing into an in-memory buffer,
// with helpers to parse and query the captured JSON lines.

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
)

// lockedBuffer serializes writes from concurrent loggers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// TestLogger captures log records in memory for later inspection.
type TestLogger struct {
	Logger
	buffer *lockedBuffer
}

// NewTestLogger creates a TestLogger with the specified minimum level.
//
//	logger := log.NewTestLogger(log.LevelDebug)
//	log.SetProvider(logger.Provider())
//	// ... run code ...
//	if !logger.ContainsMessage("fit finished") { ... }
func NewTestLogger(level Level) *TestLogger {
	buf := &lockedBuffer{}
	return &TestLogger{
		Logger: NewZerologLogger(buf, level),
		buffer: buf,
	}
}

// Provider returns a LoggerProvider whose loggers write into this TestLogger's buffer.
func (t *TestLogger) Provider() LoggerProvider {
	return &testProvider{t: t}
}

// String returns everything captured so far.
func (t *TestLogger) String() string {
	return t.buffer.String()
}

// GetLogEntries parses the captured output into one map per record.
func (t *TestLogger) GetLogEntries() ([]map[string]interface{}, error) {
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(t.buffer.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage checks if any captured record contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	return strings.Contains(t.buffer.String(), message)
}

// ContainsField checks if any captured record has key set to value.
// JSON numbers decode as float64.
func (t *TestLogger) ContainsField(key string, value interface{}) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if fieldValue, exists := entry[key]; exists && fieldValue == value {
			return true
		}
	}
	return false
}

// Clear clears all captured log content.
func (t *TestLogger) Clear() {
	t.buffer.Reset()
}

type testProvider struct {
	t *TestLogger
}

func (p *testProvider) GetLogger() Logger {
	return p.t.Logger
}

func (p *testProvider) GetLoggerWithName(name string) Logger {
	return p.t.Logger.With(ComponentKey, name)
}

func (p *testProvider) SetLevel(level Level) {
	p.t.Logger = NewZerologLogger(p.t.buffer, level)
}
