package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// TestLogger は各ログを JSON 1 行としてメモリに書き出す Logger です。
// 反復ログのキーと値をテストから検証するために使います。
type TestLogger struct {
	buffer *bytes.Buffer
	level  Level
	fields map[string]any
}

// NewTestLogger returns a TestLogger dropping records below level, and the
// buffer it writes to.
//
//	logger, buf := log.NewTestLogger(log.LevelDebug)
//	rational.SKFit(y, P, Q, rational.WithLogger(logger))
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	return &TestLogger{buffer: buffer, level: level, fields: map[string]any{}}, buffer
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.write(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.write(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.write(LevelWarn, msg, fields) }
func (t *TestLogger) Error(msg string, fields ...any) { t.write(LevelError, msg, fields) }

// With returns a logger sharing the buffer with fields added to every record.
func (t *TestLogger) With(fields ...any) Logger {
	next := make(map[string]any, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		next[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		next[fmt.Sprint(fields[i])] = jsonValue(fields[i+1])
	}
	return &TestLogger{buffer: t.buffer, level: t.level, fields: next}
}

func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return t.level <= level
}

func (t *TestLogger) write(level Level, msg string, fields []any) {
	if level < t.level {
		return
	}
	entry := map[string]any{"level": level.String(), "message": msg}
	for k, v := range t.fields {
		entry[k] = v
	}
	// A leading bare error is recorded under ErrAttrKey.
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			entry[ErrAttrKey] = err.Error()
			fields = fields[1:]
		}
	}
	for i := 0; i+1 < len(fields); i += 2 {
		entry[fmt.Sprint(fields[i])] = jsonValue(fields[i+1])
	}
	line, _ := json.Marshal(entry)
	t.buffer.Write(append(line, '\n'))
}

// jsonValue converts values encoding/json cannot represent.
func jsonValue(v any) any {
	switch t := v.(type) {
	case error:
		return t.Error()
	case complex128:
		return fmt.Sprint(t)
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Sprint(t)
		}
	}
	return v
}

// GetLogEntries decodes the captured JSON lines.
func (t *TestLogger) GetLogEntries() ([]map[string]any, error) {
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(t.buffer.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ContainsMessage reports whether any captured line contains message.
func (t *TestLogger) ContainsMessage(message string) bool {
	return strings.Contains(t.buffer.String(), message)
}

// ContainsField reports whether some record has key equal to value after a
// JSON round trip, so numbers compare as float64.
func (t *TestLogger) ContainsField(key string, value any) bool {
	entries, err := t.GetLogEntries()
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if v, ok := entry[key]; ok && v == value {
			return true
		}
	}
	return false
}
