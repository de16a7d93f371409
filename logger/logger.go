// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

var (
	isTerm    = isatty.IsTerminal(os.Stderr.Fd())
	isJournal = isStderrConnectedToJournal()
)

// New creates a new Logger.
func New() *Logger {
	if isTerm {
		// skip 2 slog pkg calls, 2 this pkg calls
		return &Logger{sl: slog.New(withCallDepth(4, newTerminalHandler()))}
	}
	return &Logger{sl: slog.New(newTextHandler())}
}

// Logger is a wrapper around slog.Logger.
type Logger struct {
	sl *slog.Logger
}

// Error logs a message at level Error.
func (l *Logger) Error(a ...any) { l.log(slog.LevelError, fmt.Sprint(a...)) }

// Warning logs a message at level Warn.
func (l *Logger) Warning(a ...any) { l.log(slog.LevelWarn, fmt.Sprint(a...)) }

// Info logs a message at level Info.
func (l *Logger) Info(a ...any) { l.log(slog.LevelInfo, fmt.Sprint(a...)) }

// Debug logs a message at level Debug.
func (l *Logger) Debug(a ...any) { l.log(slog.LevelDebug, fmt.Sprint(a...)) }

// Errorf logs a message at level Error.
func (l *Logger) Errorf(format string, a ...any) { l.log(slog.LevelError, fmt.Sprintf(format, a...)) }

// Warningf logs a message at level Warn.
func (l *Logger) Warningf(format string, a ...any) { l.log(slog.LevelWarn, fmt.Sprintf(format, a...)) }

// Infof logs a message at level Info.
func (l *Logger) Infof(format string, a ...any) { l.log(slog.LevelInfo, fmt.Sprintf(format, a...)) }

// Debugf logs a message at level Debug.
func (l *Logger) Debugf(format string, a ...any) { l.log(slog.LevelDebug, fmt.Sprintf(format, a...)) }

// With returns a Logger that includes the given attributes in each output operation.
func (l *Logger) With(args ...any) *Logger {
	if l.isNil() {
		return New().With(args...)
	}

	return &Logger{sl: l.sl.With(args...)}
}

func (l *Logger) log(level slog.Level, msg string) {
	if l.isNil() {
		nilLogger.log(level, msg)
		return
	}
	l.sl.Log(context.Background(), level, msg)
}

func (l *Logger) isNil() bool { return l == nil || l.sl == nil }

var nilLogger = New().With(slog.String("logger", "nil"))
