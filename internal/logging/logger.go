// Package logging writes progress messages to the console and, while a log
// file is open, to that file as well.
//
// Console lines carry only the message, prefixed with WARNING or ERROR for
// those levels. The log file gets a timestamp and
// level on each line:
//
//	if err := logging.Initialize(""); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
//	if err := logging.OpenLog(filepath.Join(dir, "export.log")); err != nil {
//	    return err
//	}
//	defer logging.CloseLog()
//
//	logging.Info("Loading personal library...")
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// Valid values: "debug", "info", "warn", "error". Defaults to info.
const LogLevelEnvVar = "GMUSIC_PLAYLIST_LOG_LEVEL"

var (
	mu          sync.Mutex
	logger      *zap.Logger
	level       = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	consoleCore zapcore.Core
	logFile     *os.File
)

// Initialize sets up console logging at the given level.
// If level is empty, GMUSIC_PLAYLIST_LOG_LEVEL is used.
func Initialize(lvl string) error {
	return initialize(lvl, os.Stdout)
}

func initialize(lvl string, out io.Writer) error {
	if lvl == "" {
		lvl = os.Getenv(LogLevelEnvVar)
	}
	zapLevel, err := parseLevel(lvl)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	level.SetLevel(zapLevel)
	consoleCore = zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(out)),
		level,
	)
	logger = zap.New(consoleCore)
	if logFile != nil {
		logger = zap.New(zapcore.NewTee(consoleCore, fileCore(logFile)))
	}
	return nil
}

func parseLevel(lvl string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", lvl)
	}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      consoleLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// consoleLevelEncoder labels warnings and errors on the console and leaves
// every other line bare.
func consoleLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch {
	case l >= zapcore.ErrorLevel:
		enc.AppendString("ERROR")
	case l == zapcore.WarnLevel:
		enc.AppendString("WARNING")
	}
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""
	return cfg
}

func fileCore(f *os.File) zapcore.Core {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(fileEncoderConfig()),
		zapcore.Lock(f),
		level,
	)
}

// OpenLog starts copying every message to the file at path, truncating it.
// A previously opened log file is closed first.
func OpenLog(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()

	closeLogLocked()
	if consoleCore == nil {
		consoleCore = zapcore.NewNopCore()
	}
	logFile = f
	logger = zap.New(zapcore.NewTee(consoleCore, fileCore(f)))
	return nil
}

// CloseLog flushes and closes the log file. Safe to call without an open log.
func CloseLog() error {
	mu.Lock()
	defer mu.Unlock()
	return closeLogLocked()
}

func closeLogLocked() error {
	if logFile == nil {
		return nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
	err := logFile.Close()
	logFile = nil
	if consoleCore != nil {
		logger = zap.New(consoleCore)
	} else {
		logger = zap.NewNop()
	}
	return err
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		// not initialized: stay quiet rather than guess an output
		logger = zap.NewNop()
	}
	return logger
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		_ = logger.Sync()
	}
}
