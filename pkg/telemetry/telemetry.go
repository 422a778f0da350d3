package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"
)

// Telemetry owns the level gate, the event store and the start time of one
// service. Construct it once at the composition root and pass it to callers.
type Telemetry struct {
	config  *Config
	gate    *Gate
	store   *Store
	sink    LogSink
	logger  *Logger
	metrics *Metrics
	tracer  *Tracer
	now     func() time.Time
	start   time.Time
}

// Option customizes a Telemetry at construction.
type Option func(*Telemetry)

// WithSink sends operational log lines to sink instead of stdout.
func WithSink(sink LogSink) Option {
	return func(t *Telemetry) { t.sink = sink }
}

// WithLogger replaces the diagnostic logger built from the config.
func WithLogger(logger *Logger) Option {
	return func(t *Telemetry) { t.logger = logger }
}

// WithClock replaces time.Now. The start time is read from it once.
func WithClock(now func() time.Time) Option {
	return func(t *Telemetry) { t.now = now }
}

// telemetryContextKey is the context key for telemetry instances.
type telemetryContextKey struct{}

// New creates a telemetry instance from configuration.
func New(cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Telemetry{config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	t.start = t.now()

	if t.logger == nil {
		logger, err := NewLogger(cfg.Logging)
		if err != nil {
			return nil, err
		}
		t.logger = logger
	}
	t.logger = t.logger.NewComponentLogger("telemetry")

	if t.sink == nil {
		t.sink = NewWriterSink(os.Stdout)
	}

	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}
	t.metrics = metrics

	tracer, err := NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, err
	}
	t.tracer = tracer

	t.gate = NewGate(cfg.DebugLevel)
	t.metrics.SetLevel(t.gate.Level())

	t.store = NewStore(cfg.Events, t.now)
	t.store.Subscribe(t.observeChange, nil)

	return t, nil
}

// WithContext adds the telemetry instance to the context.
func (t *Telemetry) WithContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, telemetryContextKey{}, t)
	return t.logger.WithContext(ctx)
}

// FromTelemetryContext retrieves the telemetry instance from the context.
// If no telemetry is found, it returns nil.
func FromTelemetryContext(ctx context.Context) *Telemetry {
	if t, ok := ctx.Value(telemetryContextKey{}).(*Telemetry); ok {
		return t
	}
	return nil
}

// Shutdown flushes and stops the tracer.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.tracer.Shutdown(ctx)
}

// ServiceName returns the service name written into log lines.
func (t *Telemetry) ServiceName() string { return t.config.ServiceName }

// Events returns the event store.
func (t *Telemetry) Events() *Store { return t.store }

// Logger returns the diagnostic logger.
func (t *Telemetry) Logger() *Logger { return t.logger }

// Metrics returns the self-instrumentation collectors.
func (t *Telemetry) Metrics() *Metrics { return t.metrics }

// Tracer returns the tracer.
func (t *Telemetry) Tracer() *Tracer { return t.tracer }

// StartTime returns the instant the instance was created.
func (t *Telemetry) StartTime() time.Time { return t.start }

// Uptime renders the time elapsed from the start time to now.
func (t *Telemetry) Uptime(now time.Time) string {
	return Uptime(t.start, now)
}

// UptimeNow renders the time elapsed from the start time to the clock's now.
func (t *Telemetry) UptimeNow() string {
	return t.Uptime(t.now())
}

// RenderEvents renders the event store as an HTML table.
func (t *Telemetry) RenderEvents() string {
	return t.store.Render("Service System Events", "Name", "Value")
}

// Level returns the current debug level.
func (t *Telemetry) Level() string { return t.gate.Level() }

// ShouldLog reports whether a line at level would be emitted.
func (t *Telemetry) ShouldLog(level string) bool { return t.gate.ShouldLog(level) }

// SetLevel changes the debug level and announces it with a system line.
// The announcement is written even when the new level is unknown.
func (t *Telemetry) SetLevel(level string) {
	t.SilentSetLevel(level)
	t.emit(string(LevelSystem), "telemetry.DebugLevel", t.gate.Level())
}

// SilentSetLevel changes the debug level without logging.
func (t *Telemetry) SilentSetLevel(level string) {
	t.gate.Set(level)
	t.metrics.RecordLevel(t.gate.Level())
	if !Known(level) {
		t.logger.WithField("debug_level", level).Warn("unknown debug level set; all lines will be suppressed")
	}
}

// ToggleLevel sets the level from raw request text. The text is
// whitespace-normalized, trimmed and lowercased first. It returns the new level.
func (t *Telemetry) ToggleLevel(raw string) string {
	input := strings.TrimSpace(NormalizeWhitespace(raw))
	t.LogText(string(LevelDebug), "toggleDebugMode.inputText", input)
	t.SetLevel(strings.ToLower(input))
	level := t.gate.Level()
	t.LogText(string(LevelSystem), "toggleDebugMode.DebugLevel", level)
	return level
}

// LogObject emits v as JSON when level passes the gate.
func (t *Telemetry) LogObject(level, label string, v any) {
	t.LogObjectContext(context.Background(), level, label, v)
}

// LogText emits text verbatim when level passes the gate.
func (t *Telemetry) LogText(level, label, text string) {
	t.LogTextContext(context.Background(), level, label, text)
}

// LogError emits the rendered form of err when level passes the gate.
func (t *Telemetry) LogError(level, label string, err any) {
	t.LogErrorContext(context.Background(), level, label, err)
}

// LogObjectContext is LogObject that also annotates the span in ctx.
// Non-finite numbers in maps and slices, such as poisoned counters in a
// store snapshot, are written as null.
func (t *Telemetry) LogObjectContext(ctx context.Context, level, label string, v any) {
	if !t.pass(level) {
		return
	}
	payload, err := json.Marshal(replaceNonFinite(v, nullNumber))
	if err != nil {
		t.logger.WithOperation(label).WithTrace(ctx).WithError(err).Warn("payload is not JSON serializable")
		t.emitContext(ctx, level, label, RenderError(err), nil)
		return
	}
	t.emitContext(ctx, level, label, string(payload), nil)
}

// LogTextContext is LogText that also annotates the span in ctx.
func (t *Telemetry) LogTextContext(ctx context.Context, level, label, text string) {
	if !t.pass(level) {
		return
	}
	t.emitContext(ctx, level, label, text, nil)
}

// LogErrorContext is LogError that also records the error on the span in ctx.
func (t *Telemetry) LogErrorContext(ctx context.Context, level, label string, err any) {
	if !t.pass(level) {
		return
	}
	var spanErr error
	if e, ok := err.(error); ok && !isNil(e) {
		spanErr = e
	} else if truthy(err) {
		spanErr = errors.New(RenderError(err))
	}
	t.emitContext(ctx, level, label, RenderError(err), spanErr)
}

// ErrorHandler returns a callback that logs non-nil errors at error level
// under "<label>.err".
func (t *Telemetry) ErrorHandler(label string) func(error) {
	return func(err error) {
		if err != nil {
			t.LogError(string(LevelError), label+".err", err)
		}
	}
}

// FormatLine builds an operational log line.
func FormatLine(timestamp, service, level, label, payload string) string {
	return timestamp +
		"|service=" + service +
		"|level=" + strings.ToUpper(level) +
		"|operation=" + label +
		"|data=" + payload
}

// pass checks the gate. A rejected call only bumps the suppressed counter.
func (t *Telemetry) pass(level string) bool {
	ok := t.gate.ShouldLog(level)
	if !ok {
		t.metrics.RecordLine(level, false)
	}
	return ok
}

func (t *Telemetry) emit(level, label, payload string) {
	t.emitContext(context.Background(), level, label, payload, nil)
}

func (t *Telemetry) emitContext(ctx context.Context, level, label, payload string, err error) {
	t.sink.Emit(FormatLine(FormatTimestamp(t.now()), t.config.ServiceName, level, label, payload))
	t.metrics.RecordLine(level, true)
	annotateSpan(ctx, t.config.ServiceName, level, label, err)
}

func (t *Telemetry) observeChange(c Change) {
	t.metrics.RecordChange(c)
	if c.Poisoned() {
		t.logger.WithChange(c).Warn("counter is not a number after increment")
	}
}
