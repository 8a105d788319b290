package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SlogLevel maps the level onto log/slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelFromSlog(l slog.Level) LogLevel {
	switch {
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarn
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// ParseLevel converts a textual level ("debug", "info", ...) into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return levelFromSlog(l), nil
}

// LogEntry is the structured log entry passed to the TUI.
type LogEntry struct {
	Timestamp  time.Time
	Level      LogLevel
	Subsystem  string
	Message    string
	Err        error
	Attributes []slog.Attr
}

const (
	subsystemKey         = "subsystem"
	errorKey             = "error"
	tuiChannelBufferSize = 2048
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
	tuiLogChannel chan LogEntry
)

// channelHandler is a slog.Handler that turns records into LogEntry values for the TUI.
// The send blocks once the buffer is full so entries stay in order.
type channelHandler struct {
	ch    chan<- LogEntry
	level slog.Level
	attrs []slog.Attr
}

func (h *channelHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level
}

func (h *channelHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{
		Timestamp: r.Time,
		Level:     levelFromSlog(r.Level),
		Message:   r.Message,
	}
	collect := func(a slog.Attr) {
		switch a.Key {
		case subsystemKey:
			entry.Subsystem = a.Value.String()
		case errorKey:
			if err, ok := a.Value.Any().(error); ok {
				entry.Err = err
			} else {
				entry.Err = fmt.Errorf("%s", a.Value.String())
			}
		default:
			entry.Attributes = append(entry.Attributes, a)
		}
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(a)
		return true
	})
	h.ch <- entry
	return nil
}

func (h *channelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &channelHandler{ch: h.ch, level: h.level, attrs: merged}
}

// WithGroup flattens groups; the TUI has no use for nesting.
func (h *channelHandler) WithGroup(string) slog.Handler {
	return h
}

// InitForTUI initializes the logging system for TUI mode.
// The returned channel must be drained by the TUI.
func InitForTUI(filterLevel LogLevel) <-chan LogEntry {
	ch := make(chan LogEntry, tuiChannelBufferSize)
	logger := slog.New(&channelHandler{ch: ch, level: filterLevel.SlogLevel()})

	mu.Lock()
	tuiLogChannel = ch
	defaultLogger = logger
	mu.Unlock()

	slog.SetDefault(logger)
	return ch
}

// InitForCLI initializes the logging system for CLI mode, writing text records to output.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: filterLevel.SlogLevel()}))

	mu.Lock()
	tuiLogChannel = nil
	defaultLogger = logger
	mu.Unlock()

	slog.SetDefault(logger)
}

func logInternal(level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()

	if logger == nil {
		fmt.Fprintf(os.Stderr, "[LOGGING_ERROR] Logger not initialized. Log: %s [%s] %s\n", time.Now().Format(time.RFC3339), level, msg)
		return
	}

	attrs := []slog.Attr{slog.String(subsystemKey, subsystem)}
	if err != nil {
		attrs = append(attrs, slog.Any(errorKey, err))
	}
	logger.LogAttrs(context.Background(), level.SlogLevel(), msg, attrs...)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}

// CloseTUIChannel closes the TUI log channel. Should be called on application shutdown.
// Later log calls fall back to stderr.
func CloseTUIChannel() {
	mu.Lock()
	defer mu.Unlock()
	if tuiLogChannel != nil {
		close(tuiLogChannel)
		tuiLogChannel = nil
		defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(defaultLogger)
	}
}
