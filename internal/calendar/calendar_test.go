// internal/calendar/calendar_test.go
package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCountBusinessDays(t *testing.T) {
	testCases := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{"same weekday", date(2024, 1, 1), date(2024, 1, 1), 1},       // Monday
		{"same saturday", date(2024, 1, 6), date(2024, 1, 6), 0},      // Saturday
		{"same sunday", date(2024, 1, 7), date(2024, 1, 7), 0},        // Sunday
		{"monday to friday", date(2024, 1, 1), date(2024, 1, 5), 5},   // full work week
		{"monday to monday", date(2024, 1, 1), date(2024, 1, 8), 6},   // spans one weekend
		{"friday to monday", date(2024, 1, 5), date(2024, 1, 8), 2},   // only the endpoints count
		{"saturday to sunday", date(2024, 1, 6), date(2024, 1, 7), 0}, // weekend only
		{"reversed range", date(2024, 1, 8), date(2024, 1, 1), 0},
		{"two full weeks", date(2024, 1, 1), date(2024, 1, 14), 10},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountBusinessDays(tt.start, tt.end))
		})
	}
}

func TestCountBusinessDaysIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 5, CountBusinessDays(start, end))

	// end earlier in the day than start, but a later calendar day
	start = time.Date(2024, 1, 4, 18, 0, 0, 0, time.UTC)
	end = time.Date(2024, 1, 5, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, CountBusinessDays(start, end))
}

func TestCountBusinessDaysProperties(t *testing.T) {
	base := date(2020, 1, 1)

	rapid.Check(t, func(t *rapid.T) {
		startOff := rapid.IntRange(0, 2000).Draw(t, "startOff")
		span := rapid.IntRange(0, 400).Draw(t, "span")
		start := base.AddDate(0, 0, startOff)
		end := start.AddDate(0, 0, span)

		got := CountBusinessDays(start, end)
		if got < 0 {
			t.Fatalf("negative count %d", got)
		}
		if got > span+1 {
			t.Fatalf("count %d exceeds calendar span %d", got, span+1)
		}
		// every full week contributes exactly 5 business days
		if expectedFloor := (span + 1) / 7 * 5; got < expectedFloor {
			t.Fatalf("count %d below weekly floor %d", got, expectedFloor)
		}
		// appending a weekend-only suffix never changes the count
		ext := end
		for i := 0; i < 2; i++ {
			ext = ext.AddDate(0, 0, 1)
			if isWeekday(ext) {
				break
			}
			if CountBusinessDays(start, ext) != got {
				t.Fatalf("weekend extension changed count")
			}
		}
	})
}

func TestHolidaySet(t *testing.T) {
	set := NewHolidaySet([]time.Time{
		date(2024, 1, 1),  // Monday
		date(2024, 1, 1),  // duplicate collapses
		date(2024, 1, 6),  // Saturday
		date(2024, 12, 25),
	})

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains(date(2024, 1, 1)))
	assert.True(t, set.Contains(time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)))
	assert.False(t, set.Contains(date(2024, 1, 2)))
}

func TestHolidaySetMatchesAcrossZones(t *testing.T) {
	bogota := time.FixedZone("America/Bogota", -5*3600)

	// flagged from a local-midnight timestamp, probed in UTC and back
	set := NewHolidaySet([]time.Time{time.Date(2024, 1, 3, 0, 0, 0, 0, bogota)})
	assert.True(t, set.Contains(date(2024, 1, 3)))
	assert.True(t, set.Contains(time.Date(2024, 1, 3, 22, 0, 0, 0, bogota)))
	assert.False(t, set.Contains(date(2024, 1, 2)))

	// and the reverse: flagged in UTC, probed with a zoned timestamp
	set = NewHolidaySet([]time.Time{date(2024, 1, 3)})
	assert.True(t, set.Contains(time.Date(2024, 1, 3, 8, 0, 0, 0, bogota)))
}

func TestWeekdayHolidaysBetween(t *testing.T) {
	set := NewHolidaySet([]time.Time{
		date(2024, 1, 1), // Monday
		date(2024, 1, 3), // Wednesday
		date(2024, 1, 6), // Saturday, must not count
		date(2024, 1, 8), // Monday
	})

	// interval is half-open: the holiday on the lower bound is excluded
	assert.Equal(t, 2, set.WeekdayHolidaysBetween(date(2024, 1, 1), date(2024, 1, 8)))
	assert.Equal(t, 3, set.WeekdayHolidaysBetween(date(2023, 12, 31), date(2024, 1, 8)))
	assert.Equal(t, 0, set.WeekdayHolidaysBetween(date(2024, 1, 8), date(2024, 1, 1)))
	assert.Equal(t, 0, set.WeekdayHolidaysBetween(date(2024, 1, 4), date(2024, 1, 7)))
}
