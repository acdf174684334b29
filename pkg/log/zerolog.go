package log

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/ratfit/pkg/errors"
)

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

func (z *ZerologLogger) Debug(msg string, fields ...any) { z.emit(z.logger.Debug(), msg, fields) }
func (z *ZerologLogger) Info(msg string, fields ...any)  { z.emit(z.logger.Info(), msg, fields) }
func (z *ZerologLogger) Warn(msg string, fields ...any)  { z.emit(z.logger.Warn(), msg, fields) }
func (z *ZerologLogger) Error(msg string, fields ...any) { z.emit(z.logger.Error(), msg, fields) }

// With implements Logger.
func (z *ZerologLogger) With(fields ...any) Logger {
	ctx := z.logger.With()
	for i := 0; i < len(fields)-1; i += 2 {
		ctx = ctx.Interface(fmt.Sprint(fields[i]), fieldValue(fields[i+1]))
	}
	return &ZerologLogger{logger: ctx.Logger()}
}

// Enabled implements Logger.
func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return z.logger.GetLevel() <= toZerologLevel(level)
}

func (z *ZerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			e = e.Err(err)
			if m, ok := unwrapMarshaler(err); ok {
				e = e.EmbedObject(m)
			}
			fields = fields[1:]
		}
	}
	for i := 0; i < len(fields)-1; i += 2 {
		key := fmt.Sprint(fields[i])
		switch v := fields[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		case complex128:
			e = e.Str(key, fmt.Sprint(v))
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

// ZerologProvider hands out ZerologLoggers derived from one root logger.
type ZerologProvider struct {
	root zerolog.Logger
}

// NewZerologProvider returns a provider backed by root.
func NewZerologProvider(root zerolog.Logger) *ZerologProvider {
	return &ZerologProvider{root: root}
}

func (p *ZerologProvider) GetLogger() Logger {
	return NewZerologLogger(p.root)
}

func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return NewZerologLogger(p.root.With().Str(ComponentKey, name).Logger())
}

func (p *ZerologProvider) SetLevel(level Level) {
	p.root = p.root.Level(toZerologLevel(level))
}

// InstallWarnings routes errors.Warn through logger as structured warnings.
func (z *ZerologLogger) InstallWarnings() {
	errors.SetZerologWarnFunc(func(w error) {
		e := z.logger.Warn()
		if m, ok := unwrapMarshaler(w); ok {
			e = e.EmbedObject(m)
		}
		e.Msg(w.Error())
	})
}

func unwrapMarshaler(err error) (zerolog.LogObjectMarshaler, bool) {
	var m zerolog.LogObjectMarshaler
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

func fieldValue(v any) any {
	switch t := v.(type) {
	case error:
		return t.Error()
	case complex128:
		return fmt.Sprint(t)
	}
	return v
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
