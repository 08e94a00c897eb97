package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/killallgit/pharmai/pkg/config"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger provides a unified logging interface
type Logger struct {
	level     LogLevel
	logger    *log.Logger
	file      *os.File
	component string
	stderr    bool
}

var defaultLogger *Logger

// Init initializes the default logger from the global config
func Init() error {
	if defaultLogger != nil && defaultLogger.file != nil {
		return nil
	}

	settings := config.Get().Logging
	l, err := New(ParseLevel(settings.Level), settings.LogFile, settings.Preserve)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defaultLogger = l
	return nil
}

// New creates a Logger writing to logFile. Relative paths resolve against the settings directory.
func New(level LogLevel, logFile string, persist bool) (*Logger, error) {
	logPath := logFile
	if !filepath.IsAbs(logPath) {
		logPath = config.BuildSettingsPath(filepath.Base(logPath))
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if persist {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	file, err := os.OpenFile(logPath, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		level:  level,
		logger: log.New(file, "", log.LstdFlags),
		file:   file,
		stderr: true,
	}, nil
}

// NewWithWriter creates a Logger that writes to w. Nothing is mirrored to stderr.
func NewWithWriter(level LogLevel, w io.Writer) *Logger {
	return &Logger{
		level:  level,
		logger: log.New(w, "", 0),
	}
}

// SetDefault replaces the package-level logger
func SetDefault(l *Logger) {
	defaultLogger = l
}

// WithComponent returns a logger that tags every line with the component name.
// Before Init it returns a logger that drops everything.
func WithComponent(component string) *Logger {
	if defaultLogger == nil {
		return NewWithWriter(LevelError+1, io.Discard).named(component)
	}
	return defaultLogger.named(component)
}

func (l *Logger) named(component string) *Logger {
	child := *l
	child.component = component
	return &child
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ParseLevel converts a string level to LogLevel
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
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

func (l *Logger) write(level LogLevel, msg string, keysAndValues ...any) {
	if level < l.level {
		return
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level.String())
	b.WriteString("] ")
	if l.component != "" {
		b.WriteString(l.component)
		b.WriteString(": ")
	}
	b.WriteString(msg)
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, " %v=<missing>", keysAndValues[i])
		}
	}

	line := b.String()
	l.logger.Print(line)

	if l.stderr && level >= LevelError {
		fmt.Fprintln(os.Stderr, line)
	}
}

// Debug logs a debug message with optional key/value pairs
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.write(LevelDebug, msg, keysAndValues...)
}

// Info logs an info message with optional key/value pairs
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.write(LevelInfo, msg, keysAndValues...)
}

// Warn logs a warning message with optional key/value pairs
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.write(LevelWarn, msg, keysAndValues...)
}

// Error logs an error message with optional key/value pairs
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.write(LevelError, msg, keysAndValues...)
}

// Package-level convenience functions using the default logger

// Debug logs a debug message using the default logger
func Debug(format string, args ...any) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.write(LevelDebug, fmt.Sprintf(format, args...))
}

// Info logs an info message using the default logger
func Info(format string, args ...any) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.write(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn logs a warning message using the default logger
func Warn(format string, args ...any) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.write(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs an error message using the default logger
func Error(format string, args ...any) {
	if defaultLogger == nil {
		return
	}
	defaultLogger.write(LevelError, fmt.Sprintf(format, args...))
}

// Close closes the default logger
func Close() error {
	if defaultLogger != nil {
		return defaultLogger.Close()
	}
	return nil
}
