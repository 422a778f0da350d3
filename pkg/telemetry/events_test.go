package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestStore(cfg EventsConfig) *Store {
	return NewStore(cfg, fixedClock(testStart))
}

func TestStore_SeedAndSnapshot(t *testing.T) {
	s := newTestStore(EventsConfig{})
	s.SeedDefaults(map[string]any{"a": 1, "b": 2})

	assert.Equal(t, map[string]any{"a": 1, "b": 2}, s.Snapshot())

	s.Clear()
	assert.Equal(t, map[string]any{}, s.Snapshot())
	assert.Equal(t, 0, s.Len())
}

func TestStore_SeedOverwrites(t *testing.T) {
	s := newTestStore(EventsConfig{})
	s.Record("a", "old")
	s.SeedDefaults(map[string]any{"a": "new", "b": 0})

	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestStore_ConfigDefaults(t *testing.T) {
	defaults := map[string]any{"requests": 0}
	s := newTestStore(EventsConfig{Defaults: defaults})
	s.Increment("requests")

	assert.Equal(t, 1.0, s.Snapshot()["requests"])
	assert.Equal(t, 0, defaults["requests"], "config defaults must not be mutated")
}

func TestStore_SnapshotIsIndependent(t *testing.T) {
	s := newTestStore(EventsConfig{})
	s.Record("a", "1")

	snap := s.Snapshot()
	snap["a"] = "changed"
	snap["b"] = "added"

	v, _ := s.Get("a")
	assert.Equal(t, "1", v)
	_, ok := s.Get("b")
	assert.False(t, ok)
}

func TestStore_RecordNow(t *testing.T) {
	s := newTestStore(EventsConfig{})
	s.RecordNow("service.started")

	v, _ := s.Get("service.started")
	assert.Equal(t, "2026-10-19T08:00:00.000Z", v)
}

func TestStore_IncrementMissingIsNaN(t *testing.T) {
	s := newTestStore(EventsConfig{})

	n := s.Increment("hits")
	assert.True(t, math.IsNaN(n))

	v, ok := s.Get("hits")
	require.True(t, ok)
	assert.True(t, math.IsNaN(v.(float64)))

	// NaN sticks.
	assert.True(t, math.IsNaN(s.Increment("hits")))
}

func TestStore_IncrementMissingWithZeroInit(t *testing.T) {
	s := newTestStore(EventsConfig{ZeroMissingCounters: true})

	assert.Equal(t, 1.0, s.Increment("hits"))
	assert.Equal(t, 2.0, s.Increment("hits"))
}

func TestStore_IncrementParsesLeadingInteger(t *testing.T) {
	tests := []struct {
		seed any
		want float64
	}{
		{0, 1},
		{41, 42},
		{"7", 8},
		{"  12 apples", 13},
		{"-3", -2},
		{"+9", 10},
		{"0x1A", 27},
		{2.9, 3},
		{"3.7", 4},
	}
	for _, tt := range tests {
		s := newTestStore(EventsConfig{})
		s.Record("c", tt.seed)
		assert.Equal(t, tt.want, s.Increment("c"), "seed %#v", tt.seed)
	}
}

func TestStore_IncrementPoisonsNonNumeric(t *testing.T) {
	for _, seed := range []any{"abc", "", true, nil, "2026-10-19T08:00:00.000Z x"} {
		s := newTestStore(EventsConfig{ZeroMissingCounters: true})
		s.Record("c", seed)
		if seed == "2026-10-19T08:00:00.000Z x" {
			// Leading digits still count.
			assert.Equal(t, 2027.0, s.Increment("c"))
			continue
		}
		assert.True(t, math.IsNaN(s.Increment("c")), "seed %#v", seed)
	}
}

func TestStore_Observers(t *testing.T) {
	s := newTestStore(EventsConfig{ZeroMissingCounters: true})

	var all, counters []Change
	s.Subscribe(func(c Change) { all = append(all, c) }, nil)
	s.Subscribe(func(c Change) { counters = append(counters, c) }, FilterByKind(ChangeIncrement))

	s.SeedDefaults(map[string]any{"a": 1})
	s.Record("b", "x")
	s.Increment("a")
	s.Clear()

	require.Len(t, all, 4)
	assert.Equal(t, ChangeSeed, all[0].Kind)
	assert.Equal(t, ChangeRecord, all[1].Kind)
	assert.Equal(t, ChangeIncrement, all[2].Kind)
	assert.Equal(t, 2.0, all[2].Value)
	assert.Equal(t, ChangeClear, all[3].Kind)
	assert.Equal(t, testStart, all[0].Timestamp)
	assert.NotEqual(t, all[0].ID, all[1].ID)

	require.Len(t, counters, 1)
	assert.Equal(t, "a", counters[0].Name)
}

func TestStore_ObserverMayReadStore(t *testing.T) {
	s := newTestStore(EventsConfig{})
	var seen any
	s.Subscribe(func(c Change) { seen, _ = s.Get(c.Name) }, FilterByName("x"))

	s.Record("x", "value")
	assert.Equal(t, "value", seen)
}

func TestFilters(t *testing.T) {
	c := Change{Kind: ChangeRecord, Name: "http.requests"}

	assert.True(t, FilterByName("http.requests", "other")(c))
	assert.False(t, FilterByName("other")(c))
	assert.True(t, FilterByPrefix("http.")(c))
	assert.False(t, FilterByPrefix("db.")(c))
	assert.True(t, FilterByKind(ChangeRecord, ChangeSeed)(c))
	assert.False(t, FilterByKind(ChangeClear)(c))
}

func TestChange_Poisoned(t *testing.T) {
	assert.True(t, Change{Kind: ChangeIncrement, Value: math.NaN()}.Poisoned())
	assert.False(t, Change{Kind: ChangeIncrement, Value: 1.0}.Poisoned())
	assert.False(t, Change{Kind: ChangeRecord, Value: math.NaN()}.Poisoned())
}

func TestStore_Render(t *testing.T) {
	s := newTestStore(EventsConfig{})
	s.SeedDefaults(map[string]any{"requests": 2})
	s.Increment("requests")
	s.Increment("errors")
	s.RecordNow("service.started")
	s.Record("note", "<b>hi</b>")

	g := goldie.New(t)
	g.Assert(t, "system_events", []byte(s.Render("Service System Events", "Name", "Value")))
}

func TestStore_RenderEmpty(t *testing.T) {
	s := newTestStore(EventsConfig{})
	got := s.Render("Empty", "K", "V")
	assert.Equal(t, "<h3>Empty</h3>\n<table>\n<tr><th>K</th><th>V</th></tr>\n</table>\n", got)
}
