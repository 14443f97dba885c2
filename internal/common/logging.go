package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// Logger wraps arbor.ILogger to provide a consistent interface
type Logger struct {
	arbor.ILogger
}

// NewLogger creates a console logger with the specified level
func NewLogger(level string) *Logger {
	logger := arbor.NewLogger().
		WithConsoleWriter(consoleWriter()).
		WithLevelFromString(normalizeLevel(level))
	return &Logger{ILogger: logger}
}

// NewLoggerFromConfig creates a logger from the logging configuration.
// Supported outputs are "console" (or "stdout") and "file".
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	logger := arbor.NewLogger()

	hasConsole := len(cfg.Outputs) == 0
	for _, output := range cfg.Outputs {
		switch output {
		case "console", "stdout":
			hasConsole = true
		case "file":
			if cfg.FilePath == "" {
				continue
			}
			if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
				continue
			}
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   cfg.FilePath,
				TimeFormat: "15:04:05",
				MaxSize:    100 * 1024 * 1024, // 100 MB
				MaxBackups: 3,
				TextOutput: true,
			})
		}
	}

	if hasConsole {
		logger = logger.WithConsoleWriter(consoleWriter())
	}

	return &Logger{ILogger: logger.WithLevelFromString(normalizeLevel(cfg.Level))}
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewNoOpLogger()}
}

// WithCorrelationID returns a child logger tagged with the given correlation id.
func (l *Logger) WithCorrelationID(id string) *Logger {
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}

func consoleWriter() models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
		TextOutput: true,
	}
}

func normalizeLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
