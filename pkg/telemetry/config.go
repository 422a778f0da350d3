package telemetry

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config contains the telemetry configuration of a service.
type Config struct {
	// ServiceName is written into every operational log line.
	ServiceName string `yaml:"service_name" json:"service_name" validate:"required"`

	// ServiceVersion is the version of the service.
	ServiceVersion string `yaml:"service_version" json:"service_version" validate:"required"`

	// Environment specifies the deployment environment (dev, staging, prod).
	Environment string `yaml:"environment" json:"environment"`

	// DebugLevel is the starting verbosity threshold (system, error, info, debug).
	DebugLevel string `yaml:"debug_level" json:"debug_level" validate:"required"`

	// Logging configures the diagnostic logger.
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Tracing configures span annotation of log lines.
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`

	// Metrics configures self-instrumentation.
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Events configures the event store.
	Events EventsConfig `yaml:"events" json:"events"`
}

// LoggingConfig configures the diagnostic logger.
type LoggingConfig struct {
	// Enabled turns the diagnostic logger on. When off, anomalies are dropped.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string `yaml:"level" json:"level" validate:"omitempty,oneof=trace debug info warn error"`

	// Format specifies the log format (console, json).
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=console json"`

	// Output specifies where logs are written (stdout, stderr, file path).
	Output string `yaml:"output" json:"output"`

	// EnableCaller adds file:line caller information to logs.
	EnableCaller bool `yaml:"enable_caller" json:"enable_caller"`

	// TimeFormat specifies the timestamp format (unix, rfc3339).
	TimeFormat string `yaml:"time_format" json:"time_format"`
}

// TracingConfig configures tracing.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Exporter specifies the trace exporter (otlp, stdout, none).
	Exporter string `yaml:"exporter" json:"exporter" validate:"omitempty,oneof=otlp stdout none"`

	// Endpoint is the OTLP collector endpoint.
	Endpoint string `yaml:"endpoint" json:"endpoint" validate:"required_if=Exporter otlp"`

	// SamplingRate is the trace sampling rate (0.0 to 1.0).
	SamplingRate float64 `yaml:"sampling_rate" json:"sampling_rate" validate:"gte=0,lte=1"`

	// ExportTimeout is the timeout for trace export.
	ExportTimeout time.Duration `yaml:"export_timeout" json:"export_timeout"`

	// Insecure disables TLS for the exporter connection.
	Insecure bool `yaml:"insecure" json:"insecure"`
}

// MetricsConfig configures self-instrumentation.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Namespace is the metrics namespace prefix.
	Namespace string `yaml:"namespace" json:"namespace" validate:"required_if=Enabled true"`
}

// EventsConfig configures the event store.
type EventsConfig struct {
	// Defaults seed the store when it is created.
	Defaults map[string]any `yaml:"defaults" json:"defaults"`

	// ZeroMissingCounters makes Increment treat a missing event as 0 instead of NaN.
	ZeroMissingCounters bool `yaml:"zero_missing_counters" json:"zero_missing_counters"`
}

// DefaultConfig returns a default telemetry configuration.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "vitals",
		ServiceVersion: "dev",
		Environment:    "development",
		DebugLevel:     string(LevelInfo),
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "warn",
			Format:     "console",
			Output:     "stderr",
			TimeFormat: "rfc3339",
		},
		Tracing: TracingConfig{
			Enabled:       false,
			Exporter:      "none",
			SamplingRate:  1.0,
			ExportTimeout: 30 * time.Second,
			Insecure:      true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "vitals",
		},
		Events: EventsConfig{
			Defaults: make(map[string]any),
		},
	}
}

// ProductionConfig returns a production-oriented configuration.
func ProductionConfig() *Config {
	cfg := DefaultConfig()
	cfg.Environment = "production"
	cfg.DebugLevel = string(LevelError)
	cfg.Logging.Format = "json"
	cfg.Logging.TimeFormat = "unix"
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "otlp"
	cfg.Tracing.Endpoint = "localhost:4317"
	cfg.Tracing.SamplingRate = 0.1
	cfg.Tracing.Insecure = false
	return cfg
}

// DevelopmentConfig returns a verbose configuration for local work.
func DevelopmentConfig() *Config {
	cfg := DefaultConfig()
	cfg.Environment = "development"
	cfg.DebugLevel = string(LevelDebug)
	cfg.Logging.Level = "debug"
	cfg.Logging.EnableCaller = true
	cfg.Tracing.Exporter = "stdout"
	return cfg
}

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid telemetry config: %w", err)
	}

	// An unknown debug level silences everything at runtime; reject it up front.
	if !Known(c.DebugLevel) {
		return fmt.Errorf("invalid debug level: %s", c.DebugLevel)
	}

	if c.Tracing.Enabled && c.Tracing.Exporter == "" {
		return fmt.Errorf("trace exporter is required when tracing is enabled")
	}

	return nil
}
