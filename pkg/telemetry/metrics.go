package telemetry

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the telemetry package itself on a private registry.
// The registry is handed to the host service; nothing is served from here.
type Metrics struct {
	config MetricsConfig

	linesEmitted    *prometheus.CounterVec
	linesSuppressed *prometheus.CounterVec
	storeMutations  *prometheus.CounterVec
	poisoned        prometheus.Counter
	levelChanges    prometheus.Counter
	levelRank       prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// No-op instance: every recorder returns early.
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		linesEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lines_emitted_total",
				Help:      "Total number of operational log lines emitted",
			},
			[]string{"level"},
		),
		linesSuppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lines_suppressed_total",
				Help:      "Total number of log calls rejected by the level gate",
			},
			[]string{"level"},
		),
		storeMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_mutations_total",
				Help:      "Total number of event store mutations",
			},
			[]string{"kind"},
		),
		poisoned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "counters_poisoned_total",
				Help:      "Total number of increments that stored NaN",
			},
		),
		levelChanges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "level_changes_total",
				Help:      "Total number of debug level changes",
			},
		),
		levelRank: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "current_level_rank",
				Help:      "Rank of the current debug level (-1 when unknown)",
			},
		),
	}

	registry.MustRegister(
		m.linesEmitted,
		m.linesSuppressed,
		m.storeMutations,
		m.poisoned,
		m.levelChanges,
		m.levelRank,
	)

	return m, nil
}

// RecordLine counts a log call by level and whether it passed the gate.
// Level names outside the known set share the "unknown" label.
func (m *Metrics) RecordLine(level string, emitted bool) {
	if m.linesEmitted == nil {
		return
	}
	level = levelLabel(level)
	if emitted {
		m.linesEmitted.WithLabelValues(level).Inc()
		return
	}
	m.linesSuppressed.WithLabelValues(level).Inc()
}

// RecordChange counts a store mutation.
func (m *Metrics) RecordChange(c Change) {
	if m.storeMutations == nil {
		return
	}
	m.storeMutations.WithLabelValues(string(c.Kind)).Inc()
	if c.Poisoned() {
		m.poisoned.Inc()
	}
}

// RecordLevel counts a level change and tracks the new rank.
func (m *Metrics) RecordLevel(level string) {
	if m.levelChanges == nil {
		return
	}
	m.levelChanges.Inc()
	m.SetLevel(level)
}

// SetLevel tracks the rank of level without counting a change.
func (m *Metrics) SetLevel(level string) {
	if m.levelRank == nil {
		return
	}
	rank, ok := Rank(level)
	if !ok {
		rank = -1
	}
	m.levelRank.Set(float64(rank))
}

// Registry returns the registry holding the collectors, or nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// UnknownLevelLabel is the metric label for level names outside Levels().
const UnknownLevelLabel = "unknown"

func levelLabel(level string) string {
	level = strings.ToLower(level)
	if !Known(level) {
		return UnknownLevelLabel
	}
	return level
}
