package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case DEBUG:
		return slog.LevelDebug
	case WARN:
		return slog.LevelWarn
	case ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type Logger struct {
	level Level
	sl    *slog.Logger
}

// New returns a text logger on stderr.
func New(level string) *Logger {
	return NewWithWriter(os.Stderr, level, false)
}

// NewWithWriter returns a logger writing to w, as JSON when json is set.
func NewWithWriter(w io.Writer, level string, json bool) *Logger {
	l := &Logger{level: ParseLevel(level)}
	opts := &slog.HandlerOptions{Level: l.level.slogLevel()}

	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	l.sl = slog.New(h)
	return l
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter(io.Discard, "error", false)
}

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// With returns a child logger that attaches key=value to every record.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{level: l.level, sl: l.sl.With(key, value)}
}

func (l *Logger) log(level Level, format string, v ...interface{}) {
	if level < l.level {
		return
	}
	l.sl.Log(context.Background(), level.slogLevel(), fmt.Sprintf(format, v...))
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.log(INFO, format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.log(WARN, format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.log(ERROR, format, v...)
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(DEBUG, format, v...)
}
