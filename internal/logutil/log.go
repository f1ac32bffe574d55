// Package logutil is a small leveled logger used throughout tictocdb.
//
// There are four levels: ERROR, WARN, INFO, DEBUG. The default level is
// INFO; override it with SetLevel or the TICTOC_LOG_LEVEL environment
// variable.
package logutil

import (
	"fmt"
	"log"
	"os"
)

type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

func levelFromString(s string) Level {
	switch s {
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

var std = New()

func init() {
	if l := os.Getenv("TICTOC_LOG_LEVEL"); l != "" {
		std.SetLevel(levelFromString(l))
	}
}

type Logger struct {
	out   *log.Logger
	level Level
}

func New() *Logger {
	return &Logger{out: log.New(os.Stderr, "", log.LstdFlags|log.Lshortfile), level: LevelInfo}
}

func (l *Logger) SetLevel(level Level) { l.level = level }

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	l.out.Output(3, fmt.Sprintf("[%s] %s", level, fmt.Sprintf(format, args...)))
}

func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(LevelError, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }

func SetLevel(level Level)                                { std.SetLevel(level) }
func Errorf(format string, args ...interface{})            { std.Errorf(format, args...) }
func Warnf(format string, args ...interface{})             { std.Warnf(format, args...) }
func Infof(format string, args ...interface{})             { std.Infof(format, args...) }
func Debugf(format string, args ...interface{})            { std.Debugf(format, args...) }
