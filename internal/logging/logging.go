// Package logging provides the global structured logger for yichus-core.
//
// Diagnostics go through this package; command results are printed with fmt
// by the CLI so they stay pipeable. The logger defaults to a no-op until
// Initialize is called, so library code can log unconditionally.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the global logger instance.
var L *zap.SugaredLogger

func init() {
	// Safe no-op until Initialize runs, so early code cannot panic.
	L = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. Verbose enables debug-level output;
// jsonOutput switches to machine-readable structured logs on stderr.
func Initialize(verbose, jsonOutput bool) error {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	var zapLogger *zap.Logger
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
		var err error
		zapLogger, err = config.Build()
		if err != nil {
			return err
		}
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encoderConfig),
				zapcore.AddSync(os.Stderr),
				level,
			),
		)
	}

	L = zapLogger.Sugar()
	return nil
}

// Sync flushes any buffered log entries. Call before process exit.
func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}

// Debugw logs a debug message with structured fields.
func Debugw(msg string, keysAndValues ...interface{}) {
	L.Debugw(msg, keysAndValues...)
}

// Infow logs an info message with structured fields.
func Infow(msg string, keysAndValues ...interface{}) {
	L.Infow(msg, keysAndValues...)
}

// Warnw logs a warning message with structured fields.
func Warnw(msg string, keysAndValues ...interface{}) {
	L.Warnw(msg, keysAndValues...)
}

// Errorw logs an error message with structured fields.
func Errorw(msg string, keysAndValues ...interface{}) {
	L.Errorw(msg, keysAndValues...)
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...interface{}) {
	L.Debugf(format, args...)
}

// Infof logs a formatted info message.
func Infof(format string, args ...interface{}) {
	L.Infof(format, args...)
}

// Warnf logs a formatted warning message.
func Warnf(format string, args ...interface{}) {
	L.Warnf(format, args...)
}

// Errorf logs a formatted error message.
func Errorf(format string, args ...interface{}) {
	L.Errorf(format, args...)
}
