// Package telemetry provides level-gated operational logging and a small
// in-memory event store for lightweight service health reporting.
//
// # Architecture
//
// A Telemetry value is built once at the composition root of a service and
// passed to the code that needs it. It owns:
//
//  1. Level Gate - the current debug level (system < error < info < debug)
//  2. Event Store - named facts, timestamps and counters for status pages
//  3. Start Time - captured at construction, the epoch for uptime
//
// Supporting pieces are a LogSink for operational lines, a zerolog Logger
// for the package's own diagnostics, Prometheus collectors on a private
// registry and an OpenTelemetry tracer used to annotate spans.
//
// # Usage
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "orders"
//
//	tel, err := telemetry.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	tel.LogText("info", "orders.start", "listening")
//	tel.Events().RecordNow("service.started")
//	tel.Events().Increment("requests")
//
// # Log Lines
//
// Every emitted line has a fixed field order:
//
//	<timestamp>|service=<name>|level=<LEVEL>|operation=<label>|data=<payload>
//
// LogObject writes JSON, LogText writes the text verbatim and LogError writes
// "Type=<name>, Message=<message>". A call rejected by the gate does no
// formatting work at all. Unknown level names are rejected silently.
//
// # Counters
//
// Increment parses the stored value as a leading integer and adds one. A
// missing or non-numeric value yields NaN, which then sticks. Seed counters
// with SeedDefaults, or set EventsConfig.ZeroMissingCounters to start missing
// counters at zero.
//
// # Configuration
//
// LoadConfig reads YAML, JSON or CUE files on top of DefaultConfig.
// ConfigWatcher follows a config file with fsnotify and applies debug level
// changes at runtime.
package telemetry
