// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

type Configuration struct {
	LogFile   string
	ErrorFile string
	Level     string
	Console   bool
}

// Initialize replaces the package logger. Until it is called every log call is a no-op.
func Initialize(configuration Configuration) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(configuration.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var cores []zapcore.Core

	if configuration.LogFile != "" {
		logFile, err := os.OpenFile(configuration.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(logFile),
			level,
		))
	}

	if configuration.ErrorFile != "" {
		errorFile, err := os.OpenFile(configuration.ErrorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open error log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(errorFile),
			zapcore.ErrorLevel,
		))
	}

	if configuration.Console {
		consoleConfig := encoderConfig
		if isatty.IsTerminal(os.Stdout.Fd()) {
			consoleConfig.EncodeLevel = zapcore.LowercaseColorLevelEncoder
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleConfig),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	core := zapcore.NewTee(cores...)
	Set(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
	return nil
}

// Set swaps the underlying logger. Tests use it with zaptest/observer.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

func get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Sync flushes buffered entries.
func Sync() error {
	return get().Sync()
}

func Debug(message string, fields ...zap.Field) {
	get().Debug(message, fields...)
}

func Info(message string, fields ...zap.Field) {
	get().Info(message, fields...)
}

func Warn(message string, fields ...zap.Field) {
	get().Warn(message, fields...)
}

func Error(message string, fields ...zap.Field) {
	get().Error(message, fields...)
}

func Fatal(message string, fields ...zap.Field) {
	get().Fatal(message, fields...)
}
