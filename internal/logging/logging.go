package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

var (
	currentLevel LogLevel
	levelOnce    sync.Once

	outputMu sync.RWMutex
	base     zerolog.Logger
	baseOnce sync.Once
)

// initLevel initializes the log level from environment variables
func initLevel() {
	levelOnce.Do(func() {
		// DEBUG wins over LOG_LEVEL
		if debug := os.Getenv("DEBUG"); debug != "" {
			switch strings.ToLower(debug) {
			case "1", "true", "yes", "on":
				currentLevel = LevelDebug
				return
			}
		}
		currentLevel = ParseLevel(os.Getenv("LOG_LEVEL"))
	})
}

// ParseLevel converts a level name to a LogLevel. Unknown names map to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// initOutput builds the zerolog sink. LOG_FORMAT=json selects raw JSON lines,
// anything else the human readable console writer.
func initOutput() {
	baseOnce.Do(func() {
		outputMu.Lock()
		defer outputMu.Unlock()
		base = newLogger(os.Stderr, strings.ToLower(os.Getenv("LOG_FORMAT")) == "json")
	})
}

func newLogger(w io.Writer, jsonFormat bool) zerolog.Logger {
	if !jsonFormat {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// SetOutput redirects all log output to w. Used by tests and the CLI.
func SetOutput(w io.Writer, jsonFormat bool) {
	initOutput()
	outputMu.Lock()
	defer outputMu.Unlock()
	base = newLogger(w, jsonFormat)
}

func logger() zerolog.Logger {
	initOutput()
	outputMu.RLock()
	defer outputMu.RUnlock()
	return base
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	return currentLevel
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	if GetLevel() <= LevelDebug {
		l := logger()
		l.Debug().Msgf(format, args...)
	}
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	if GetLevel() <= LevelInfo {
		l := logger()
		l.Info().Msgf(format, args...)
	}
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	if GetLevel() <= LevelWarn {
		l := logger()
		l.Warn().Msgf(format, args...)
	}
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	if GetLevel() <= LevelError {
		l := logger()
		l.Error().Msgf(format, args...)
	}
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	l := logger()
	l.Fatal().Msgf(format, args...)
}

// Printf writes a message regardless of level
func Printf(format string, args ...interface{}) {
	l := logger()
	l.Log().Msgf(format, args...)
}

// Entry is a logger carrying structured fields, e.g. a request or run ID.
type Entry struct {
	l zerolog.Logger
}

// With returns an Entry that attaches key=value to every message.
func With(key string, value interface{}) Entry {
	return Entry{l: logger().With().Interface(key, value).Logger()}
}

// With adds another field to the entry.
func (e Entry) With(key string, value interface{}) Entry {
	return Entry{l: e.l.With().Interface(key, value).Logger()}
}

// Debug logs at debug level with the entry's fields.
func (e Entry) Debug(format string, args ...interface{}) {
	if GetLevel() <= LevelDebug {
		e.l.Debug().Msgf(format, args...)
	}
}

// Info logs at info level with the entry's fields.
func (e Entry) Info(format string, args ...interface{}) {
	if GetLevel() <= LevelInfo {
		e.l.Info().Msgf(format, args...)
	}
}

// Warn logs at warn level with the entry's fields.
func (e Entry) Warn(format string, args ...interface{}) {
	if GetLevel() <= LevelWarn {
		e.l.Warn().Msgf(format, args...)
	}
}

// Error logs at error level with the entry's fields.
func (e Entry) Error(format string, args ...interface{}) {
	if GetLevel() <= LevelError {
		e.l.Error().Msgf(format, args...)
	}
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
