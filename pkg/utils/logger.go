package utils

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger for debug messages
var logger = zap.NewNop()

// L returns the process logger. It is a no-op logger until InitLogger
// is called with verbose enabled.
func L() *zap.Logger {
	return logger
}

// Log writes a formatted debug message
func Log(text string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(text, args...))
}

// InitLogger initializes the logging system. The terminal belongs to the
// TUI, so verbose output goes to a dated file under /tmp.
func InitLogger(verbose bool) error {
	if !verbose {
		logger = zap.NewNop()
		return nil
	}

	// Create log filename with current date
	logFileName := fmt.Sprintf("/tmp/stm_%s.log", time.Now().Format("2006-01-02"))

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{logFileName}
	cfg.ErrorOutputPaths = []string{logFileName}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("create log file: %w", err)
	}
	logger = l
	zap.ReplaceGlobals(l)

	Log("Verbose logging enabled")
	return nil
}

// CloseLogger flushes buffered log entries
func CloseLogger() {
	_ = logger.Sync()
}
