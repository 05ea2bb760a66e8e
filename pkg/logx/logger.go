package logx

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/svenkata/TabChatAPI/internal/config"
)

// Logger is a thin slog wrapper that tags every record with its component
// name and attaches the caller's source location on warn and above.
type Logger struct {
	inner *slog.Logger
}

func Init() {
	level := slog.LevelDebug
	if config.IS_PROD {
		level = config.LOG_LEVEL_PROD
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if config.IS_PROD {
		handler = slog.NewJSONHandler(os.Stdout, options)
	} else {
		handler = slog.NewTextHandler(os.Stdout, options)
	}
	slog.SetDefault(slog.New(handler))
}

func NewLogger(component string) *Logger {
	return &Logger{inner: slog.Default().With("component", component)}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.logWithCaller(slog.LevelWarn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.logWithCaller(slog.LevelError, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

func (l *Logger) logWithCaller(level slog.Level, msg string, args ...any) {
	ctx := context.Background()
	if !l.inner.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// skip runtime.Callers, logWithCaller and the level method
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.Add(args...)
	_ = l.inner.Handler().Handle(ctx, record)
}
