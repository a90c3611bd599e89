package loom

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// The package logger defaults to a nop logger: a library stays silent
// unless the host opts in via SetLogger or ConfigureLogging.
var (
	globalLogger   = zap.NewNop()
	globalLoggerMu sync.RWMutex
)

// SetLogger replaces the package logger. Passing nil restores the nop
// logger.
func SetLogger(logger *zap.Logger) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	globalLogger = logger
}

// GetLogger returns the package logger.
func GetLogger() *zap.Logger {
	globalLoggerMu.RLock()
	defer globalLoggerMu.RUnlock()
	return globalLogger
}

// IsDebugEnabled reports whether debug logging is active on the package
// logger.
func IsDebugEnabled() bool {
	return GetLogger().Core().Enabled(zapcore.DebugLevel)
}

func parseLogLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLoggerForLevel builds a production JSON logger writing to stderr at
// the given level.
func NewLoggerForLevel(level string) (*zap.Logger, error) {
	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLogLevel(level)),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}

// ConfigureLogging builds a logger for the configured level and installs
// it as the package logger.
func ConfigureLogging(level string) error {
	logger, err := NewLoggerForLevel(level)
	if err != nil {
		return err
	}
	SetLogger(logger)
	return nil
}
