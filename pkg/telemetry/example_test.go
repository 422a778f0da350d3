package telemetry_test

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/openfroyo/vitals/pkg/telemetry"
)

var exampleStart = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func newExampleTelemetry(level string) *telemetry.Telemetry {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceName = "orders"
	cfg.DebugLevel = level
	cfg.Logging.Enabled = false

	tel, err := telemetry.New(cfg,
		telemetry.WithSink(telemetry.NewWriterSink(os.Stdout)),
		telemetry.WithClock(func() time.Time { return exampleStart }),
	)
	if err != nil {
		panic(err)
	}
	return tel
}

// Example_logLines shows how the level gate filters operational lines.
func Example_logLines() {
	tel := newExampleTelemetry("info")
	defer tel.Shutdown(context.Background())

	tel.LogText("info", "orders.start", "listening on :8080")
	tel.LogText("debug", "orders.detail", "not written at info")
	tel.LogObject("error", "orders.reject", map[string]any{"id": 42})
	tel.LogError("error", "orders.save", errors.New("disk full"))

	// Output:
	// 2026-10-19T08:00:00.000Z|service=orders|level=INFO|operation=orders.start|data=listening on :8080
	// 2026-10-19T08:00:00.000Z|service=orders|level=ERROR|operation=orders.reject|data={"id":42}
	// 2026-10-19T08:00:00.000Z|service=orders|level=ERROR|operation=orders.save|data=Type=Error, Message=disk full
}

// Example_toggleLevel changes the level at runtime from request text.
func Example_toggleLevel() {
	tel := newExampleTelemetry("error")
	defer tel.Shutdown(context.Background())

	level := tel.ToggleLevel("  DEBUG\n")
	fmt.Println(level, tel.ShouldLog("debug"))

	// Output:
	// 2026-10-19T08:00:00.000Z|service=orders|level=SYSTEM|operation=telemetry.DebugLevel|data=debug
	// 2026-10-19T08:00:00.000Z|service=orders|level=SYSTEM|operation=toggleDebugMode.DebugLevel|data=debug
	// debug true
}

// Example_counters shows counter semantics, including a counter that was
// never seeded.
func Example_counters() {
	tel := newExampleTelemetry("info")
	defer tel.Shutdown(context.Background())

	events := tel.Events()
	events.SeedDefaults(map[string]any{"requests": 0})
	events.Increment("requests")
	events.Increment("requests")
	events.Increment("errors")

	fmt.Println(events.Get("requests"))
	fmt.Println(events.Get("errors"))

	// Output:
	// 2 true
	// NaN true
}

// Example_statusReport builds a JSON status report from query overrides.
func Example_statusReport() {
	tel := newExampleTelemetry("info")
	defer tel.Shutdown(context.Background())

	tel.Events().Record("service.started", telemetry.FormatTimestamp(tel.StartTime()))

	q := url.Values{}
	q.Set(telemetry.OptShowServiceInfo, "false")
	q.Set(telemetry.OptRawJSONOnly, "true")

	body, contentType, err := tel.Report(telemetry.StatusOptions(telemetry.OverridesFromQuery(q)), nil).Render()
	if err != nil {
		panic(err)
	}
	fmt.Println(contentType)
	fmt.Println(string(body))

	// Output:
	// application/json
	// {
	//   "systemEvents": {
	//     "service.started": "2026-10-19T08:00:00.000Z"
	//   }
	// }
}

// Example_mergeWithOverrides shows how text overrides are coerced.
func Example_mergeWithOverrides() {
	opts := telemetry.MergeWithOverrides(
		map[string]any{"showServiceInfo": true, "format": "html"},
		map[string]any{"showServiceInfo": "FALSE", "format": "", "limit": 10},
	)

	fmt.Println(opts.Bool("showServiceInfo"), opts.String("format"), opts.String("limit"))

	// Output:
	// false html 10
}

// Example_uptime renders elapsed time since a start instant.
func Example_uptime() {
	fmt.Println(telemetry.Uptime(exampleStart, exampleStart.Add(90*time.Minute)))

	// Output:
	// 00 days and 01:30:00 since 2026-10-19T08:00:00.000Z
}
