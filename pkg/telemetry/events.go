package telemetry

import (
	"fmt"
	"html/template"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// ChangeKind identifies the store operation behind a Change.
type ChangeKind string

// ChangeKind constants.
const (
	ChangeSeed      ChangeKind = "seed"
	ChangeRecord    ChangeKind = "record"
	ChangeIncrement ChangeKind = "increment"
	ChangeClear     ChangeKind = "clear"
)

// Change describes a single store mutation delivered to observers.
type Change struct {
	// ID is the unique identifier for this change.
	ID string `json:"id"`

	// Kind is the operation that produced the change.
	Kind ChangeKind `json:"kind"`

	// Name is the affected event name. Empty for clear.
	Name string `json:"name,omitempty"`

	// Value is the value stored by the change.
	Value any `json:"value,omitempty"`

	// Timestamp is when the change happened.
	Timestamp time.Time `json:"timestamp"`
}

// Poisoned reports whether the change stored a counter that is not a number.
func (c Change) Poisoned() bool {
	f, ok := c.Value.(float64)
	return c.Kind == ChangeIncrement && ok && math.IsNaN(f)
}

// Observer handles store changes. Observers run synchronously after the
// store lock has been released.
type Observer func(change Change)

// ChangeFilter determines if a change should be delivered to an observer.
type ChangeFilter func(change Change) bool

type observerEntry struct {
	observer Observer
	filter   ChangeFilter
}

// Store is an in-memory name to value mapping for operational facts and
// counters. Values are strings, caller-supplied seed values or float64
// counters. Entries never expire.
type Store struct {
	mu        sync.RWMutex
	events    map[string]any
	observers []observerEntry
	config    EventsConfig
	now       func() time.Time
}

// NewStore creates a store seeded with cfg.Defaults. A nil now uses time.Now.
func NewStore(cfg EventsConfig, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{
		events: make(map[string]any, len(cfg.Defaults)),
		config: cfg,
		now:    now,
	}
	for k, v := range cfg.Defaults {
		s.events[k] = v
	}
	return s
}

// SeedDefaults overwrites or creates every key of values.
func (s *Store) SeedDefaults(values map[string]any) {
	changes := make([]Change, 0, len(values))
	s.mu.Lock()
	for k, v := range values {
		s.events[k] = v
		changes = append(changes, s.change(ChangeSeed, k, v))
	}
	s.mu.Unlock()
	s.notify(changes...)
}

// Record sets a single event value.
func (s *Store) Record(name string, value any) {
	s.mu.Lock()
	s.events[name] = value
	c := s.change(ChangeRecord, name, value)
	s.mu.Unlock()
	s.notify(c)
}

// RecordNow records the current timestamp under name.
func (s *Store) RecordNow(name string) {
	s.Record(name, FormatTimestamp(s.now()))
}

// Increment parses the current value as a leading integer, adds one and
// stores the result. A value that does not parse yields NaN, and NaN stays
// NaN on every later increment. A missing value is NaN too, unless the store
// was configured with ZeroMissingCounters.
func (s *Store) Increment(name string) float64 {
	s.mu.Lock()
	current, ok := s.events[name]
	var n float64
	switch {
	case ok:
		n = parseLeadingInt(stringify(current))
	case s.config.ZeroMissingCounters:
		n = 0
	default:
		n = math.NaN()
	}
	n++
	s.events[name] = n
	c := s.change(ChangeIncrement, name, n)
	s.mu.Unlock()
	s.notify(c)
	return n
}

// Get returns the value stored under name.
func (s *Store) Get(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.events[name]
	return v, ok
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Snapshot returns a shallow copy of every stored event.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.events))
	for k, v := range s.events {
		out[k] = v
	}
	return out
}

// Clear drops every stored event.
func (s *Store) Clear() {
	s.mu.Lock()
	s.events = make(map[string]any)
	c := s.change(ChangeClear, "", nil)
	s.mu.Unlock()
	s.notify(c)
}

// Render returns the current snapshot as an HTML key/value table.
// Rows are ordered by name.
func (s *Store) Render(title, keyLabel, valueLabel string) string {
	return renderTable(title, keyLabel, valueLabel, s.Snapshot())
}

// Subscribe registers an observer. A nil filter accepts every change.
func (s *Store) Subscribe(observer Observer, filter ChangeFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, observerEntry{
		observer: observer,
		filter:   filter,
	})
}

func (s *Store) change(kind ChangeKind, name string, value any) Change {
	return Change{
		ID:        uuid.New().String(),
		Kind:      kind,
		Name:      name,
		Value:     value,
		Timestamp: s.now(),
	}
}

func (s *Store) notify(changes ...Change) {
	s.mu.RLock()
	entries := make([]observerEntry, len(s.observers))
	copy(entries, s.observers)
	s.mu.RUnlock()

	for _, c := range changes {
		for _, entry := range entries {
			if entry.filter != nil && !entry.filter(c) {
				continue
			}
			entry.observer(c)
		}
	}
}

// FilterByName accepts changes to exactly the given names.
func FilterByName(names ...string) ChangeFilter {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(c Change) bool {
		return set[c.Name]
	}
}

// FilterByPrefix accepts changes to names starting with prefix.
func FilterByPrefix(prefix string) ChangeFilter {
	return func(c Change) bool {
		return strings.HasPrefix(c.Name, prefix)
	}
}

// FilterByKind accepts changes of the given kinds.
func FilterByKind(kinds ...ChangeKind) ChangeFilter {
	set := make(map[ChangeKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(c Change) bool {
		return set[c.Kind]
	}
}

// parseLeadingInt reads an optionally signed integer from the start of s,
// after leading whitespace, and ignores whatever follows it. A 0x prefix
// selects hexadecimal. Text with no leading digits is NaN.
func parseLeadingInt(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := 1.0
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	base := 10.0
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	var n float64
	digits := 0
	for _, r := range s {
		d := digitValue(r)
		if d < 0 || float64(d) >= base {
			break
		}
		n = n*base + float64(d)
		digits++
	}
	if digits == 0 {
		return math.NaN()
	}
	return sign * n
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return -1
}

var tableTemplate = template.Must(template.New("table").Parse(
	`<h3>{{.Title}}</h3>
<table>
<tr><th>{{.KeyLabel}}</th><th>{{.ValueLabel}}</th></tr>
{{- range .Rows}}
<tr><td>{{.Key}}</td><td>{{.Value}}</td></tr>
{{- end}}
</table>
`))

type tableRow struct {
	Key   string
	Value string
}

func renderTable(title, keyLabel, valueLabel string, data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]tableRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, tableRow{Key: k, Value: stringify(data[k])})
	}

	var b strings.Builder
	err := tableTemplate.Execute(&b, struct {
		Title      string
		KeyLabel   string
		ValueLabel string
		Rows       []tableRow
	}{title, keyLabel, valueLabel, rows})
	if err != nil {
		return fmt.Sprintf("<p>%s</p>", template.HTMLEscapeString(RenderError(err)))
	}
	return b.String()
}
