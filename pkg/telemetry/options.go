package telemetry

import (
	"math"
	"net/url"
	"strings"
)

// Options is a request-scoped option map produced by MergeWithOverrides.
// Values are either bool or string.
type Options map[string]any

// Bool returns the option as a bool. Missing or non-bool values are false.
func (o Options) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

// String returns the option as text. Missing options are "".
func (o Options) String(key string) string {
	v, ok := o[key]
	if !ok {
		return ""
	}
	return stringify(v)
}

// Status report option keys.
const (
	OptShowServiceInfo  = "showServiceInfo"
	OptShowSystemEvents = "showSystemEvents"
	OptShowExtraInfo    = "showExtraInfo"
	OptRawJSONOnly      = "rawJsonOnly"
)

// MergeWithOverrides copies defaults and then applies every truthy override.
// Values whose text is "true" or "false" (any case) become bools; all others
// become their string form. Keys only in overrides are added.
func MergeWithOverrides(defaults, overrides map[string]any) Options {
	result := make(Options, len(defaults)+len(overrides))
	for k, v := range defaults {
		result[k] = coerce(v)
	}
	for k, v := range overrides {
		if truthy(v) {
			result[k] = coerce(v)
		}
	}
	return result
}

// StatusOptions merges overrides onto the status report defaults.
func StatusOptions(overrides map[string]any) Options {
	return MergeWithOverrides(map[string]any{
		OptShowServiceInfo:  true,
		OptShowSystemEvents: true,
		OptShowExtraInfo:    true,
		OptRawJSONOnly:      false,
	}, overrides)
}

// OverridesFromQuery turns query parameters into an override map using the
// first value of each key.
func OverridesFromQuery(q url.Values) map[string]any {
	out := make(map[string]any, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

func coerce(v any) any {
	text := stringify(v)
	switch strings.ToLower(text) {
	case "true":
		return true
	case "false":
		return false
	}
	return text
}

func truthy(v any) bool {
	if isNil(v) {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toNumber(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}
