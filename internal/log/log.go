// Package log is the process-wide levelled logger. Calls take a message and
// alternating key/value pairs:
//
//	log.Info("event created", "id", id, "start", start)
//	log.Error("save failed", err, "path", path)
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	mu       sync.RWMutex
	logger   *slog.Logger
	level    = new(slog.LevelVar)
	initOnce sync.Once
)

func initLogger() {
	initOnce.Do(func() {
		level.Set(slog.LevelInfo)
		logger = newLogger(os.Stderr)
	})
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a config string to a Level. Unknown values yield INFO.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	initLogger()
	level.Set(toSlog(l))
}

// SetOutput redirects all subsequent log lines to w.
func SetOutput(w io.Writer) {
	initLogger()
	mu.Lock()
	logger = newLogger(w)
	mu.Unlock()
}

func Debug(msg string, kv ...any) {
	current().Debug(msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Info(msg, kv...)
}

func Warn(msg string, kv ...any) {
	current().Warn(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	extended := append([]any{"err", err}, kv...)
	current().Error(msg, extended...)
}

// Slog exposes the underlying logger for libraries that want one.
func Slog() *slog.Logger {
	return current()
}

func current() *slog.Logger {
	initLogger()
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func toSlog(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
