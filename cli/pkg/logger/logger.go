package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/emrealmaoglu/trailium/cli/pkg/config"
)

var logger *log.Logger

// Init opens log.file and logs at log.level. verbose forces debug.
// When the file cannot be opened the logger writes to stderr instead.
func Init(verbose bool) {
	var out io.Writer = os.Stderr
	if logFile := config.GetString("log.file"); logFile != "" {
		if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600); err == nil {
			out = f
		}
	}
	InitWithWriter(out, verbose)
}

// InitWithWriter sends log output to w
func InitWithWriter(w io.Writer, verbose bool) {
	logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "trailium-cli",
	})

	level, err := log.ParseLevel(config.GetString("log.level"))
	if err != nil {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}

// GetLogger returns the logger instance, nil before Init
func GetLogger() *log.Logger {
	return logger
}
