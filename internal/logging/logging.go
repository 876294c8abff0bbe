package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Level controls which messages are emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a level name from the command line into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

var (
	level   = LevelInfo
	quiet   bool
	console = log.New(os.Stdout, "", log.LstdFlags)
	file    *log.Logger
	logFile *os.File
)

// Setup configures the package logger from command-line options. When
// filePath is non-empty, messages are appended there in addition to the
// console. Quiet mode limits console output to errors.
func Setup(lvl Level, filePath string, quietMode bool) error {
	level = lvl
	quiet = quietMode

	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		file = log.New(f, "", log.LstdFlags)
	}

	return nil
}

// Close releases the log file, if one was opened.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
		file = nil
	}
}

// SetConsoleOutput redirects console logging, used by tests.
func SetConsoleOutput(w io.Writer) {
	console = log.New(w, "", log.LstdFlags)
}

func emit(msgLevel Level, format string, args ...interface{}) {
	if msgLevel < level {
		return
	}
	line := fmt.Sprintf("%s: %s", msgLevel, fmt.Sprintf(format, args...))
	if !quiet || msgLevel >= LevelError {
		console.Print(line)
	}
	if file != nil {
		file.Print(line)
	}
}

func Debugf(format string, args ...interface{}) { emit(LevelDebug, format, args...) }
func Infof(format string, args ...interface{})  { emit(LevelInfo, format, args...) }
func Warnf(format string, args ...interface{})  { emit(LevelWarn, format, args...) }
func Errorf(format string, args ...interface{}) { emit(LevelError, format, args...) }
