package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/cristianoliveira/cmdflow/internal/colors"
)

// Logger is the structured logging interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	// With returns a logger that adds the key-value pairs to every entry.
	With(args ...any) Logger
	// Shutdown flushes buffered entries and closes the log file, if any.
	Shutdown() error
}

const filePrefix = "cmdflow_"

// sink is the destination shared by a logger and everything derived
// from it with With.
type sink struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	closed bool
}

func (s *sink) close() error {
	if s == nil || s.file == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

type clogLogger struct {
	clogger  *clog.Logger
	redactor *redactor
	sink     *sink
}

// Init opens a JSON log file under LogDir for cfg. Older files beyond
// cfg.MaxFiles are rotated away first. A disabled config yields a no-op
// logger.
func Init(cfg Config) (Logger, error) {
	if !cfg.Enabled {
		return noopLogger{}, nil
	}
	f, path, err := openLogFile(cfg)
	if err != nil {
		return nil, err
	}
	clogger := clog.NewWithOptions(f, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           parseLevel(cfg.Level),
		Formatter:       clog.JSONFormatter,
	})
	return &clogLogger{
		clogger:  clogger.With("pid", cfg.PID, "command", cfg.Command),
		redactor: newRedactor(),
		sink:     &sink{file: f, path: path},
	}, nil
}

// openLogFile names the file after the start time, the pid and the command.
func openLogFile(cfg Config) (*os.File, string, error) {
	dir, err := LogDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to determine log directory: %w", err)
	}
	if err := rotate(dir, cfg.MaxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
	}
	name := fmt.Sprintf("%s%s_PID%d_%s.log",
		filePrefix,
		time.Now().Format("20060102_150405"),
		cfg.PID,
		strings.ReplaceAll(cfg.Command, " ", "_"))
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}
	return f, path, nil
}

// New returns a logger writing human readable lines to w. Front-ends use it
// for console diagnostics; Init is for the rotating log file.
func New(w io.Writer, level string) Logger {
	return &clogLogger{
		clogger:  clog.NewWithOptions(w, clog.Options{Level: parseLevel(level), Prefix: "cmdflow"}),
		redactor: newRedactor(),
	}
}

// Discard returns a logger that drops every entry.
func Discard() Logger {
	return noopLogger{}
}

func parseLevel(level string) clog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return clog.DebugLevel
	case "warn", "warning":
		return clog.WarnLevel
	case "error":
		return clog.ErrorLevel
	default:
		return clog.InfoLevel
	}
}

func (l *clogLogger) Debug(msg string, args ...any) { l.log(clog.DebugLevel, msg, args) }
func (l *clogLogger) Info(msg string, args ...any)  { l.log(clog.InfoLevel, msg, args) }
func (l *clogLogger) Warn(msg string, args ...any)  { l.log(clog.WarnLevel, msg, args) }
func (l *clogLogger) Error(msg string, args ...any) { l.log(clog.ErrorLevel, msg, args) }

func (l *clogLogger) log(level clog.Level, msg string, args []any) {
	l.clogger.Log(level, msg, l.redactor.redact(args)...)
}

func (l *clogLogger) With(args ...any) Logger {
	return &clogLogger{
		clogger:  l.clogger.With(l.redactor.redact(args)...),
		redactor: l.redactor,
		sink:     l.sink,
	}
}

// Shutdown closes the shared log file. Loggers derived with With share it,
// so shutting down any of them ends file output for all.
func (l *clogLogger) Shutdown() error {
	return l.sink.close()
}

func (l *clogLogger) filePath() string {
	if l.sink == nil {
		return ""
	}
	return l.sink.path
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (n noopLogger) With(...any) Logger { return n }
func (noopLogger) Shutdown() error      { return nil }

var (
	globalMu     sync.RWMutex
	globalOnce   sync.Once
	globalLogger Logger
)

// InitGlobal builds the process logger from the loaded configuration and
// routes console messages to it. Only the first call has an effect.
func InitGlobal() error {
	var err error
	globalOnce.Do(func() {
		var l Logger
		l, err = Init(FromGlobalConfig())
		if err != nil {
			return
		}
		globalMu.Lock()
		globalLogger = l
		globalMu.Unlock()
		colors.SetLogger(l)
		if path := CurrentLogFile(); path != "" {
			colors.Debug("logging to file:", path)
		}
	})
	return err
}

// GetGlobal returns the process logger, or a no-op logger before InitGlobal.
func GetGlobal() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return noopLogger{}
	}
	return globalLogger
}

// ShutdownGlobal closes the process logger.
func ShutdownGlobal() error {
	return GetGlobal().Shutdown()
}

// CurrentLogFile returns the file the process logger writes to, or "" when
// file logging is off.
func CurrentLogFile() string {
	if l, ok := GetGlobal().(*clogLogger); ok {
		return l.filePath()
	}
	return ""
}
