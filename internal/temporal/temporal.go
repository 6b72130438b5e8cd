// Package temporal converts chat.db timestamps into calendar buckets and
// provides the day-granularity math (streaks, per-day averages) shared by
// every statistic.
package temporal

import (
	"math"
	"sort"
	"time"
)

// Apple epoch: 2001-01-01 00:00:00 UTC. The message.date column stores
// nanoseconds since this epoch on every macOS version we read.
const (
	appleEpochUnix = 978307200
	nanosPerSecond = 1_000_000_000
)

// ToTime converts a raw message.date value into local time.
func ToTime(raw int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	secs := raw / nanosPerSecond
	nanos := raw % nanosPerSecond
	return time.Unix(appleEpochUnix+secs, nanos).In(loc)
}

// Year returns the calendar year of a raw timestamp in local time.
func Year(raw int64, loc *time.Location) int {
	return ToTime(raw, loc).Year()
}

// Day truncates a time to its calendar date (midnight) in its own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayDelta returns the whole-day difference between two calendar dates.
// Two dates are consecutive iff the delta is exactly 1.
func DayDelta(a, b time.Time) int {
	da, db := Day(a), Day(b)
	return int(math.Round(db.Sub(da).Hours() / 24))
}

// LongestRun returns the length of the longest run of consecutive calendar
// days in a time-ascending sequence of distinct dates. Empty input returns 0.
func LongestRun(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	longest, current := 1, 1
	for i := 1; i < len(dates); i++ {
		if DayDelta(dates[i-1], dates[i]) == 1 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}

// LongestRunDistinct sorts and de-duplicates dates before computing the
// longest run. Used when merging date sets across multiple handles.
func LongestRunDistinct(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	days := make([]time.Time, 0, len(dates))
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		day := Day(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return LongestRun(days)
}

// Rounding selects how AveragePerDay rounds its result. All-time averages
// round to a whole number while year-scoped averages round to one decimal
// place; both paths go through here so the asymmetry stays a single
// visible parameter.
type Rounding int

const (
	RoundWhole Rounding = iota
	RoundTenth
)

// AveragePerDay divides total by spanDays under the given rounding mode.
// A non-positive span yields 0 rather than dividing by zero.
func AveragePerDay(total float64, spanDays int, mode Rounding) float64 {
	if spanDays <= 0 {
		return 0
	}
	avg := total / float64(spanDays)
	if mode == RoundTenth {
		return math.Round(avg*10) / 10
	}
	return math.Round(avg)
}

// DaysInYear returns the number of calendar days in a year.
func DaysInYear(year int) int {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return int(start.AddDate(1, 0, 0).Sub(start).Hours() / 24)
}
