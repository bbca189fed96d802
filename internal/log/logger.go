package log

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"modelpicker/internal/core"
)

// LogLevel defines the severity level for log messages.
type LogLevel int

// Log level constants.
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelTags = [...]string{
	DEBUG: "[DEBUG] ",
	INFO:  "[INFO] ",
	WARN:  "[WARN] ",
	ERROR: "[ERROR] ",
	FATAL: "[FATAL] ",
}

// String returns the lower-case level name.
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	case FATAL:
		return "fatal"
	default:
		return "unknown"
	}
}

// ParseLevel maps a level name to a LogLevel. Unknown names yield INFO.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// AppLogger is the application logger implementation.
type AppLogger struct {
	logger     *log.Logger
	level      LogLevel
	fileHandle *os.File
	exit       func(int)
	mu         sync.Mutex
}

// NewAppLoggerWithConfig creates a logger writing to output. Debug lines are
// emitted only when debugMode is set.
func NewAppLoggerWithConfig(output io.Writer, debugMode bool) *AppLogger {
	level := INFO
	if debugMode {
		level = DEBUG
	}
	return NewAppLoggerWithLevel(output, level)
}

// NewAppLoggerWithLevel creates a logger that drops messages below level.
func NewAppLoggerWithLevel(output io.Writer, level LogLevel) *AppLogger {
	return &AppLogger{
		logger: log.New(output, "", log.LstdFlags),
		level:  level,
		exit:   os.Exit,
	}
}

func (l *AppLogger) output(level LogLevel, format string, args []any) {
	if l == nil || level < l.level {
		return
	}
	l.logger.Printf(levelTags[level]+format, args...)
}

// Debug logs a message at DEBUG level.
func (l *AppLogger) Debug(format string, args ...any) { l.output(DEBUG, format, args) }

// Info logs a message at INFO level.
func (l *AppLogger) Info(format string, args ...any) { l.output(INFO, format, args) }

// Warn logs a message at WARN level.
func (l *AppLogger) Warn(format string, args ...any) { l.output(WARN, format, args) }

// Error logs a message at ERROR level.
func (l *AppLogger) Error(format string, args ...any) { l.output(ERROR, format, args) }

// Fatal logs a message at FATAL level and terminates the process.
func (l *AppLogger) Fatal(format string, args ...any) {
	if l == nil {
		fallback := log.New(os.Stderr, "", log.LstdFlags)
		fallback.Printf(levelTags[FATAL]+format, args...)
		os.Exit(1)
	}
	l.logger.Printf(levelTags[FATAL]+format, args...)
	_ = l.Close()
	l.exit(1)
}

// Level returns the minimum level this logger emits.
func (l *AppLogger) Level() LogLevel {
	if l == nil {
		return INFO
	}
	return l.level
}

// Close safely closes the log file handle.
func (l *AppLogger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileHandle != nil {
		err := l.fileHandle.Close()
		l.fileHandle = nil
		return err
	}
	return nil
}

// containsPathTraversal reports whether path tries to climb out of the
// working directory.
func containsPathTraversal(path string) bool {
	return strings.Contains(path, "..")
}

// createDebugFileOutput opens DEBUG_FILE for appending. Any problem falls back
// to stdout and is reported through the returned warning.
func createDebugFileOutput() (io.Writer, *os.File, string) {
	debugFile := os.Getenv("DEBUG_FILE")
	if debugFile == "" {
		return os.Stdout, nil, ""
	}

	if len(debugFile) > core.MaxDebugFilePathLength {
		return os.Stdout, nil, "DEBUG_FILE path too long, falling back to stdout"
	}
	if containsPathTraversal(debugFile) {
		return os.Stdout, nil, "DEBUG_FILE contains path traversal characters, falling back to stdout"
	}

	//nolint:gosec // G304: debugFile from env var, validated by containsPathTraversal
	file, err := os.OpenFile(debugFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, core.FilePermissionReadWrite)
	if err != nil {
		return os.Stdout, nil, "failed to open DEBUG_FILE '" + debugFile + "': " + err.Error() + ", falling back to stdout"
	}

	return file, file, ""
}

// IsDebug returns whether the app is running in debug mode.
func IsDebug() bool {
	return os.Getenv("GIN_MODE") == "debug"
}

// levelFromEnv prefers LOG_LEVEL and otherwise follows GIN_MODE.
func levelFromEnv() LogLevel {
	if name := os.Getenv("LOG_LEVEL"); name != "" {
		return ParseLevel(name)
	}
	if IsDebug() {
		return DEBUG
	}
	return INFO
}

// CreateLogger creates the process logger (for dependency injection).
func CreateLogger() *AppLogger {
	output, fileHandle, warning := createDebugFileOutput()

	logger := NewAppLoggerWithLevel(output, levelFromEnv())
	logger.fileHandle = fileHandle
	if warning != "" {
		logger.Warn("%s", warning)
	}
	return logger
}

var _ core.Logger = (*AppLogger)(nil)
