// Package logger provides a structured, levelled logger built on log/slog.
//
// The handler is chosen from the APP_ENV config value at init time:
// production gets JSON at Info for log aggregators, everything else gets
// human-readable text at Debug.
//
//	logger.Info("subscription added", "event", "demo.OrderPlaced")
//	// → time=... level=INFO msg="subscription added" event=demo.OrderPlaced
package logger

import (
	"log/slog"
	"os"

	"github.com/shashiranjanraj/sandesh/config"
)

var L *slog.Logger

func init() {
	var level slog.Level
	var handler slog.Handler

	opts := &slog.HandlerOptions{Level: level}

	switch config.AppEnv() {
	case "production", "prod":
		level = slog.LevelInfo
		opts.Level = level
		handler = slog.NewJSONHandler(os.Stdout, opts) // structured JSON for log aggregators
	default:
		level = slog.LevelDebug
		opts.Level = level
		handler = slog.NewTextHandler(os.Stdout, opts) // human-readable for dev
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// With returns a logger pre-tagged with the given attributes. Components that
// log repeatedly tag themselves once:
//
//	log := logger.With("component", "stress")
//	log.Info("publisher started", "id", n)
func With(args ...any) *slog.Logger { return L.With(args...) }

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
