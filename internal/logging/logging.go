// Package logging provides the stdout logger shared by every stage and
// command. There is no structured logging library anywhere in the pack for
// a batch job of this shape, so this wraps stdlib log with a stable,
// grep-friendly prefix instead.
package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func levelFromEnv() Level {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is a minimal leveled logger over stdlib log.Logger.
type Logger struct {
	component string
	level     Level
	out       *log.Logger
}

// New returns a logger tagged with component, reading LOG_LEVEL from the
// environment (default INFO).
func New(component string) *Logger {
	return &Logger{
		component: component,
		level:     levelFromEnv(),
		out:       log.New(os.Stdout, "", log.LstdFlags),
	}
}

func (l *Logger) log(level Level, tag, format string, args ...any) {
	if level < l.level {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.out.Printf("%s | %s | %s", tag, l.component, msg)
}

func (l *Logger) Debugf(format string, args ...any) { l.log(LevelDebug, "DEBUG", format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(LevelInfo, "INFO", format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(LevelWarn, "WARN", format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(LevelError, "ERROR", format, args...) }
