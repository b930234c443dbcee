package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config holds logger configuration
type Config struct {
	Level      slog.Level
	OutputFile string // path to log file (empty = stderr only)
	MaxSize    int64  // max size in bytes before rotation
	JSONFormat bool
	AddSource  bool
}

// Logger wraps slog.Logger with file output and rotation
type Logger struct {
	slog *slog.Logger
	cfg  Config
	file *os.File
	mu   sync.Mutex
}

var (
	globalLogger *Logger
	once         sync.Once
)

// Initialize creates and configures the global logger. It also installs
// the handler as the slog default so component loggers created with
// slog.Default() pick it up.
func Initialize(cfg Config) error {
	var initErr error
	once.Do(func() {
		logger, err := NewLogger(cfg)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize logger: %w", err)
			return
		}
		globalLogger = logger
		slog.SetDefault(logger.slog)
	})
	return initErr
}

// NewLogger creates a new logger instance with the given configuration
func NewLogger(cfg Config) (*Logger, error) {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 10 * 1024 * 1024
	}

	logger := &Logger{cfg: cfg}

	writers := []io.Writer{os.Stderr}
	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
		if err := logger.rotateIfNeeded(); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.OutputFile, err)
		}
		logger.file = file
		writers = append(writers, file)
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	out := io.MultiWriter(writers...)
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger.slog = slog.New(handler)
	return logger, nil
}

// rotateIfNeeded moves an oversized log file aside before opening
func (l *Logger) rotateIfNeeded() error {
	info, err := os.Stat(l.cfg.OutputFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	if info.Size() < l.cfg.MaxSize {
		return nil
	}
	backup := l.cfg.OutputFile + ".1"
	if err := os.Rename(l.cfg.OutputFile, backup); err != nil {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	return nil
}

// With returns a component-scoped logger
func (l *Logger) With(args ...any) *slog.Logger {
	return l.slog.With(args...)
}

// Close closes the log file if one is open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Global convenience functions

func Debug(msg string, args ...any) { slog.Debug(msg, args...) }
func Info(msg string, args ...any)  { slog.Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Error(msg, args...) }

// Close closes the global logger
func Close() error {
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}

// DefaultConfig returns the configuration used by the CLI
func DefaultConfig(verbose bool) Config {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{Level: level}
	}
	logFile := filepath.Join(home, ".gitday", "logs",
		fmt.Sprintf("gitday_%s.log", time.Now().Format("2006-01-02")))

	return Config{
		Level:      level,
		OutputFile: logFile,
		MaxSize:    10 * 1024 * 1024,
		JSONFormat: false,
		AddSource:  verbose,
	}
}
