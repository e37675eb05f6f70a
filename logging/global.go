// Package logging wraps log/slog with a console handler and a weekly rotating
// JSON file, and exposes package-level helpers used across the app.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/giygas/medications-normalizer/config"
)

// LoggingService owns the process-wide logger and its log file
type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingLogger
}

// Options configures InitLoggerWithOptions
type Options struct {
	LogDir         string // Empty disables the file handler
	Env            config.Environment
	Level          string // Console level override, see GetConsoleLogLevel
	Verbose        bool   // Keep info logs on the console in the test environment
	RetentionWeeks int
	MaxFileSize    int64
	Console        io.Writer // Defaults to os.Stdout
}

var (
	DefaultLoggingService *LoggingService
	serviceMu             sync.Mutex
)

// InitLogger initializes the global logger for the dev environment
func InitLogger(logDir string) {
	InitLoggerWithOptions(Options{
		LogDir:         logDir,
		Env:            config.EnvDevelopment,
		RetentionWeeks: 4,
		MaxFileSize:    defaultMaxFileSize,
	})
}

// InitLoggerWithOptions replaces the global logger, closing the previous log file
func InitLoggerWithOptions(opts Options) {
	service := newLoggingService(opts)

	serviceMu.Lock()
	previous := DefaultLoggingService
	DefaultLoggingService = service
	serviceMu.Unlock()

	slog.SetDefault(service.Logger)

	if previous != nil {
		_ = previous.Close()
	}
}

// Close flushes and closes the log file, if any
func (s *LoggingService) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Close closes the global logging service
func Close() error {
	serviceMu.Lock()
	service := DefaultLoggingService
	serviceMu.Unlock()
	return service.Close()
}

func newLoggingService(opts Options) *LoggingService {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
	})

	if opts.LogDir == "" {
		return &LoggingService{Logger: slog.New(consoleHandler)}
	}

	retention := opts.RetentionWeeks
	if retention <= 0 {
		retention = 4
	}

	file := NewRotatingLoggerWithSizeLimit(opts.LogDir, retention, opts.MaxFileSize)
	if err := file.open(); err != nil {
		// Fall back to the console so the app can still start
		logger := slog.New(consoleHandler)
		logger.Error("Failed to initialize rotating logger", "error", err)
		return &LoggingService{Logger: logger}
	}
	file.startCleanup()

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: GetFileLogLevel(),
	})

	return &LoggingService{
		Logger: slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}),
		file:   file,
	}
}

// parseLogLevel maps a LOG_LEVEL value to a slog level, defaulting to info
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel returns the console level for an environment.
// Tests stay quiet unless verbose; an explicit level wins everywhere else.
func GetConsoleLogLevel(env config.Environment, level string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if level != "" {
		return parseLogLevel(level)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the file level, which always keeps debug records
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// fallbackLogger is used before InitLogger runs
var fallbackLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
	Level: slog.LevelDebug,
}))

func logger() *slog.Logger {
	serviceMu.Lock()
	defer serviceMu.Unlock()
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return fallbackLogger
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}
