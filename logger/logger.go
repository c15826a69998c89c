package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the global logger instance
type Logger struct {
	writer   io.Writer
	mu       sync.Mutex
	logPath  string
	minLevel LogLevel
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// Initialize sets up file logging with rotation under dataDir/logs.
// Calling it again replaces the previous destination.
func Initialize(dataDir string) error {
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "gifzoo.log")

	rotating := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	install(&Logger{
		writer:   rotating,
		logPath:  logPath,
		minLevel: DEBUG,
	})
	return nil
}

// InitializeWriter sends log lines to w instead of a rotated file.
func InitializeWriter(w io.Writer) {
	install(&Logger{
		writer:   w,
		minLevel: DEBUG,
	})
}

// Tee mirrors every subsequent log line to w in addition to the current
// destination. Used by the proxy server to also log to stderr.
func Tee(w io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalLogger == nil {
		globalLogger = &Logger{writer: w, minLevel: DEBUG}
		return
	}
	globalLogger.mu.Lock()
	globalLogger.writer = io.MultiWriter(globalLogger.writer, w)
	globalLogger.mu.Unlock()
}

func install(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

func current() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// GetLogFilePath returns the path to the current log file, or "" when
// logging to a plain writer.
func GetLogFilePath() string {
	if l := current(); l != nil {
		return l.logPath
	}
	return ""
}

// SetMinLevel sets the minimum log level to record
func SetMinLevel(level LogLevel) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// ParseLevel maps a level name (case-insensitive) to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}
	return DEBUG, fmt.Errorf("unknown log level %q", name)
}

// formatFields renders fields sorted by key so lines are stable
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

// getCallerInfo returns file:line:function of the caller
func getCallerInfo(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown:0:unknown"
	}

	funcName := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		if i := strings.LastIndex(name, "."); i >= 0 {
			funcName = name[i+1:]
		}
	}

	return fmt.Sprintf("%s:%d:%s", filepath.Base(file), line, funcName)
}

func log(level LogLevel, msg string, fields map[string]interface{}) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	caller := getCallerInfo(3) // log(), the level function, the caller

	line := fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, level.String(), caller, msg)
	if fieldsStr := formatFields(fields); fieldsStr != "" {
		line += " " + fieldsStr
	}

	_, _ = io.WriteString(l.writer, line+"\n")
}

// Debug logs a debug message
func Debug(msg string, fields map[string]interface{}) {
	log(DEBUG, msg, fields)
}

// Info logs an info message
func Info(msg string, fields map[string]interface{}) {
	log(INFO, msg, fields)
}

// Warn logs a warning message
func Warn(msg string, fields map[string]interface{}) {
	log(WARN, msg, fields)
}

// Error logs an error message
func Error(msg string, err error, fields map[string]interface{}) {
	log(ERROR, msg, withError(fields, err))
}

// Fatal logs a fatal error message. It does not exit.
func Fatal(msg string, err error, fields map[string]interface{}) {
	log(FATAL, msg, withError(fields, err))
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	if err == nil {
		return fields
	}
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
