package telemetry

import (
	"encoding/json"
	"math"
	"strings"
)

// ServiceInfo is the service section of a status report.
type ServiceInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	DebugLevel  string `json:"debugLevel"`
	StartTime   string `json:"startTime"`
	Uptime      string `json:"uptime"`
}

// StatusReport is a point-in-time view of a Telemetry instance. Sections
// switched off by the options are nil.
type StatusReport struct {
	Service *ServiceInfo   `json:"serviceInfo,omitempty"`
	Events  map[string]any `json:"systemEvents,omitempty"`
	Extra   map[string]any `json:"extraInfo,omitempty"`

	// RawJSONOnly mirrors the rawJsonOnly option.
	RawJSONOnly bool `json:"-"`
}

// Report builds a status report. Options come from StatusOptions; extra is
// host-supplied information shown when showExtraInfo is set.
func (t *Telemetry) Report(opts Options, extra map[string]any) *StatusReport {
	r := &StatusReport{RawJSONOnly: opts.Bool(OptRawJSONOnly)}
	if opts.Bool(OptShowServiceInfo) {
		r.Service = &ServiceInfo{
			Name:        t.config.ServiceName,
			Version:     t.config.ServiceVersion,
			Environment: t.config.Environment,
			DebugLevel:  t.gate.Level(),
			StartTime:   FormatTimestamp(t.start),
			Uptime:      t.UptimeNow(),
		}
	}
	if opts.Bool(OptShowSystemEvents) {
		r.Events = t.store.Snapshot()
	}
	if opts.Bool(OptShowExtraInfo) && extra != nil {
		r.Extra = make(map[string]any, len(extra))
		for k, v := range extra {
			r.Extra[k] = v
		}
	}
	return r
}

// JSON encodes the report. Numbers that are not finite, such as poisoned
// counters, are written as their text form ("NaN").
func (r *StatusReport) JSON() ([]byte, error) {
	out := *r
	out.Events = jsonSafe(r.Events)
	out.Extra = jsonSafe(r.Extra)
	return json.MarshalIndent(out, "", "  ")
}

// HTML renders the report as a sequence of key/value tables.
func (r *StatusReport) HTML() string {
	var b strings.Builder
	if r.Service != nil {
		b.WriteString(renderTable("Service Information", "Name", "Value", map[string]any{
			"Name":        r.Service.Name,
			"Version":     r.Service.Version,
			"Environment": r.Service.Environment,
			"Debug Level": r.Service.DebugLevel,
			"Start Time":  r.Service.StartTime,
			"Uptime":      r.Service.Uptime,
		}))
	}
	if r.Events != nil {
		b.WriteString(renderTable("Service System Events", "Name", "Value", r.Events))
	}
	if r.Extra != nil {
		b.WriteString(renderTable("Extra Information", "Name", "Value", r.Extra))
	}
	return b.String()
}

// Render returns JSON when RawJSONOnly is set and HTML otherwise, with the
// matching content type.
func (r *StatusReport) Render() (body []byte, contentType string, err error) {
	if r.RawJSONOnly {
		body, err = r.JSON()
		return body, "application/json", err
	}
	return []byte(r.HTML()), "text/html; charset=utf-8", nil
}

func jsonSafe(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return replaceNonFinite(m, textNumber).(map[string]any)
}

// replaceNonFinite returns v with every NaN or infinite float replaced by
// sub(f). Maps keyed by string and slices of any are copied on the way down;
// other values are returned as they are.
func replaceNonFinite(v any, sub func(float64) any) any {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return sub(x)
		}
	case float32:
		if f := float64(x); math.IsNaN(f) || math.IsInf(f, 0) {
			return sub(f)
		}
	case map[string]any:
		if x == nil {
			return v
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = replaceNonFinite(e, sub)
		}
		return out
	case []any:
		if x == nil {
			return v
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = replaceNonFinite(e, sub)
		}
		return out
	}
	return v
}

func nullNumber(float64) any { return nil }

func textNumber(f float64) any { return formatNumber(f) }
