package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	zl    zerolog.Logger
	level *Level
}

// NewZerologLogger creates a JSON logger writing to w at the given minimum level.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	lvl := level
	return &ZerologLogger{
		zl:    zerolog.New(w).With().Timestamp().Logger(),
		level: &lvl,
	}
}

func toZerologLevel(l Level) zerolog.Level {
	switch {
	case l <= LevelDebug:
		return zerolog.DebugLevel
	case l <= LevelInfo:
		return zerolog.InfoLevel
	case l <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Debug implements Logger.Debug.
func (l *ZerologLogger) Debug(msg string, fields ...any) {
	l.emit(LevelDebug, msg, fields)
}

// Info implements Logger.Info.
func (l *ZerologLogger) Info(msg string, fields ...any) {
	l.emit(LevelInfo, msg, fields)
}

// Warn implements Logger.Warn.
func (l *ZerologLogger) Warn(msg string, fields ...any) {
	l.emit(LevelWarn, msg, fields)
}

// Error implements Logger.Error. A leading error value is attached under
// ErrAttrKey together with its stack trace.
func (l *ZerologLogger) Error(msg string, fields ...any) {
	l.emit(LevelError, msg, fields)
}

// With implements Logger.With.
func (l *ZerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i < len(fields)-1; i += 2 {
		ctx = ctx.Interface(fmt.Sprintf("%v", fields[i]), fieldValue(fields[i+1]))
	}
	return &ZerologLogger{zl: ctx.Logger(), level: l.level}
}

// Enabled implements Logger.Enabled.
func (l *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return *l.level <= level
}

func (l *ZerologLogger) emit(level Level, msg string, fields []any) {
	if *l.level > level {
		return
	}
	event := l.zl.WithLevel(toZerologLevel(level))
	if event == nil {
		return
	}
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			addError(event, err)
			fields = fields[1:]
		}
	}
	for i := 0; i < len(fields)-1; i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		if err, ok := fields[i+1].(error); ok && key == ErrAttrKey {
			addError(event, err)
			continue
		}
		event.Interface(key, fieldValue(fields[i+1]))
	}
	event.Msg(msg)
}

func addError(event *zerolog.Event, err error) {
	event.Str(ErrAttrKey, err.Error())
	if m, ok := errorObject(err); ok {
		event.Object("error.detail", m)
	}
	if st := extractStacktrace(err); st != "" {
		event.Str(StacktraceKey, st)
	}
}

// errorObject finds the first error in the chain that knows how to marshal
// itself into a zerolog event.
func errorObject(err error) (zerolog.LogObjectMarshaler, bool) {
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if m, ok := e.(zerolog.LogObjectMarshaler); ok {
			return m, true
		}
	}
	return nil, false
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

func fieldValue(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

// ===========================================================================
// Global provider
// ===========================================================================

type zerologProvider struct {
	mu     sync.RWMutex
	out    io.Writer
	level  Level
	logger *ZerologLogger
}

var defaultProvider = newZerologProvider(os.Stderr, LevelWarn)

func newZerologProvider(w io.Writer, level Level) *zerologProvider {
	return &zerologProvider{out: w, level: level, logger: NewZerologLogger(w, level)}
}

func (p *zerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logger
}

func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return p.GetLogger().With(ComponentKey, name)
}

func (p *zerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
	p.logger = NewZerologLogger(p.out, level)
}

func (p *zerologProvider) setOutput(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = w
	p.logger = NewZerologLogger(w, p.level)
}

// GetLogger returns the process-wide default logger.
func GetLogger() Logger {
	return defaultProvider.GetLogger()
}

// GetLoggerWithName returns the default logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return defaultProvider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level of loggers handed out afterwards.
func SetLevel(level Level) {
	defaultProvider.SetLevel(level)
}

// SetOutput redirects loggers handed out afterwards to w.
func SetOutput(w io.Writer) {
	defaultProvider.setOutput(w)
}

// Provider returns the default LoggerProvider.
func Provider() LoggerProvider {
	return defaultProvider
}
