package telemetry

import (
	"fmt"
	"html"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"unicode"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeWhitespace converts v to text and collapses every line break and
// run of whitespace into a single space.
func NormalizeWhitespace(v any) string {
	return whitespaceRun.ReplaceAllString(stringify(v), " ")
}

// Describable is anything that can report an error type name and a message.
type Describable interface {
	Name() string
	Message() string
}

type description struct {
	name    string
	message string
}

func (d description) Name() string    { return d.name }
func (d description) Message() string { return d.message }

// Describe adapts v to Describable. Values that already implement it are
// returned as they are; errors are named after their concrete type and use
// Error() as the message. Any other value carries neither, so it gets the
// defaults: empty names become "Error" and empty messages become "undefined".
func Describe(v any) Describable {
	var name, msg string
	switch e := v.(type) {
	case Describable:
		name, msg = e.Name(), e.Message()
	case error:
		name, msg = errorTypeName(e), e.Error()
	}
	if name == "" {
		name = "Error"
	}
	if msg == "" {
		msg = "undefined"
	}
	return description{name: name, message: msg}
}

// RenderError renders v as "Type=<name>, Message=<message>" with the message
// whitespace-normalized and HTML-escaped. Falsy values (nil, false, "", zero
// and NaN) render as a not-set sentinel.
func RenderError(v any) string {
	if !truthy(v) {
		return "Type=not-set, Message=not-set"
	}
	d := Describe(v)
	msg := html.EscapeString(NormalizeWhitespace(d.Message()))
	return "Type=" + d.Name() + ", Message=" + msg
}

// IsInt reports whether v holds, or parses as, a number with no fractional part.
func IsInt(v any) bool {
	f, ok := toNumber(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f == math.Trunc(f)
}

// errorTypeName returns the exported type name of the outermost error, or ""
// for unexported implementations such as the one behind errors.New.
func errorTypeName(err error) string {
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" || !unicode.IsUpper([]rune(name)[0]) {
		return ""
	}
	return name
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return "null"
	case string:
		return s
	case float64:
		return formatNumber(s)
	case float32:
		return formatNumber(float64(s))
	case fmt.Stringer:
		return s.String()
	case error:
		return s.Error()
	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
