package telemetry

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the diagnostic channel of the telemetry package itself. It
// reports anomalies such as poisoned counters, unknown levels and failed
// reloads; the operational lines callers ask for go through a LogSink.
type Logger struct {
	zlog zerolog.Logger
}

// loggerContextKey is the context key for logger instances.
type loggerContextKey struct{}

// NewLogger builds the diagnostic logger. A disabled config yields NopLogger.
func NewLogger(cfg LoggingConfig) (*Logger, error) {
	if !cfg.Enabled {
		return NopLogger(), nil
	}
	w, err := openLogOutput(cfg.Output)
	if err != nil {
		return nil, err
	}
	return NewLoggerWithWriter(cfg, w), nil
}

// NewLoggerWithWriter builds a logger writing to w regardless of cfg.Output.
func NewLoggerWithWriter(cfg LoggingConfig, w io.Writer) *Logger {
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	zerolog.TimeFieldFormat = timeFieldFormat(cfg.TimeFormat)

	zctx := zerolog.New(w).Level(parseLogLevel(cfg.Level)).With().Timestamp()
	if cfg.EnableCaller {
		zctx = zctx.Caller()
	}
	return &Logger{zlog: zctx.Logger()}
}

// NopLogger returns a logger that discards everything.
func NopLogger() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// NewComponentLogger creates a child logger for a specific component.
func (l *Logger) NewComponentLogger(component string) *Logger {
	return l.WithField("component", component)
}

// WithContext adds the logger to the context.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, l)
}

// FromContext retrieves the logger from the context, or NopLogger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerContextKey{}).(*Logger); ok {
		return l
	}
	return NopLogger()
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zctx := l.zlog.With()
	for k, v := range fields {
		zctx = zctx.Interface(k, v)
	}
	return &Logger{zlog: zctx.Logger()}
}

// WithField returns a logger with a single additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Interface(key, value).Logger()}
}

// WithError adds error information to the logger.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zlog: l.zlog.With().Err(err).Logger()}
}

// WithChange tags the logger with a store change.
func (l *Logger) WithChange(c Change) *Logger {
	return &Logger{zlog: l.zlog.With().
		Str("event", c.Name).
		Str("change_kind", string(c.Kind)).
		Str("change_id", c.ID).
		Logger()}
}

// WithOperation tags the logger with an operational log label.
func (l *Logger) WithOperation(label string) *Logger {
	return l.WithField("operation", label)
}

// WithTrace adds the trace id of the span in ctx, if there is one.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	id := TraceID(ctx)
	if id == "" {
		return l
	}
	return l.WithField("trace_id", id)
}

// Debugf logs a formatted debug-level message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Info logs an info-level message.
func (l *Logger) Info(msg string) {
	l.zlog.Info().Msg(msg)
}

// Warn logs a warning-level message.
func (l *Logger) Warn(msg string) {
	l.zlog.Warn().Msg(msg)
}

// Error logs an error-level message.
func (l *Logger) Error(msg string) {
	l.zlog.Error().Msg(msg)
}

func openLogOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	return os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// parseLogLevel maps a config level to zerolog. Empty or unknown names mean warn.
func parseLogLevel(level string) zerolog.Level {
	if level == "" {
		return zerolog.WarnLevel
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.WarnLevel
	}
	return l
}

func timeFieldFormat(format string) string {
	switch format {
	case "unix":
		return zerolog.TimeFormatUnix
	case "unixms":
		return zerolog.TimeFormatUnixMs
	}
	return time.RFC3339
}
