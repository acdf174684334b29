package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

var (
	providerMu      sync.RWMutex
	defaultProvider LoggerProvider = NewSlogProvider(
		WrapByErrFmtHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		LevelWarn,
	)
)

// SetProvider replaces the global provider. Passing nil is a no-op.
func SetProvider(p LoggerProvider) {
	if p == nil {
		return
	}
	providerMu.Lock()
	defer providerMu.Unlock()
	defaultProvider = p
}

// GetProvider returns the global provider.
func GetProvider() LoggerProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return defaultProvider
}

// GetLogger returns the default logger of the global provider.
func GetLogger() Logger {
	return GetProvider().GetLogger()
}

// GetLoggerWithName returns a logger tagged with ComponentKey=name.
func GetLoggerWithName(name string) Logger {
	return GetProvider().GetLoggerWithName(name)
}

// SlogProvider is a LoggerProvider backed by a slog.Handler.
type SlogProvider struct {
	handler slog.Handler
	level   *slog.LevelVar
}

// NewSlogProvider wraps handler. The level acts as an additional filter on
// top of the handler's own level.
func NewSlogProvider(handler slog.Handler, level Level) *SlogProvider {
	lv := &slog.LevelVar{}
	lv.Set(slog.Level(level))
	return &SlogProvider{handler: handler, level: lv}
}

// GetLogger implements LoggerProvider.
func (p *SlogProvider) GetLogger() Logger {
	return &slogLogger{logger: slog.New(p.handler), level: p.level}
}

// GetLoggerWithName implements LoggerProvider.
func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.
func (p *SlogProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

type slogLogger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

func (l *slogLogger) log(level Level, msg string, fields ...any) {
	ctx := context.Background()
	if !l.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, slog.Level(level), msg, normalizeFields(fields)...)
}

func (l *slogLogger) Debug(msg string, fields ...any) { l.log(LevelDebug, msg, fields...) }
func (l *slogLogger) Info(msg string, fields ...any)  { l.log(LevelInfo, msg, fields...) }
func (l *slogLogger) Warn(msg string, fields ...any)  { l.log(LevelWarn, msg, fields...) }
func (l *slogLogger) Error(msg string, fields ...any) { l.log(LevelError, msg, fields...) }

func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(normalizeFields(fields)...), level: l.level}
}

func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	if slog.Level(level) < l.level.Level() {
		return false
	}
	return l.logger.Enabled(ctx, slog.Level(level))
}

// normalizeFields lets callers pass a bare error as the first field, as in
// logger.Error("fit failed", err, log.IterationKey, 3).
func normalizeFields(fields []any) []any {
	if len(fields) == 0 {
		return fields
	}
	if err, ok := fields[0].(error); ok {
		out := make([]any, 0, len(fields)+1)
		out = append(out, ErrAttr(err))
		return append(out, fields[1:]...)
	}
	return fields
}
