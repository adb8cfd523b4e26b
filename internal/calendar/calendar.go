// internal/calendar/calendar.go
package calendar

import "time"

// midnight truncates a timestamp to its calendar day, dropping the
// time-of-day and monotonic clock reading.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// isWeekday reports whether t falls on Monday through Friday.
func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// CountBusinessDays counts the calendar days in the inclusive range
// [start, end] that fall on Monday through Friday. Time-of-day is
// ignored; if end precedes start by calendar day the count is 0.
func CountBusinessDays(start, end time.Time) int {
	from := midnight(start)
	to := midnight(end)
	if to.Before(from) {
		return 0
	}

	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if isWeekday(d) {
			count++
		}
	}
	return count
}

// utcDay rebuilds t's calendar day as a UTC midnight, so dates carried
// in different zones key the same set entry.
func utcDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HolidaySet is an unordered set of calendar dates flagged as
// non-business days for fine purposes.
type HolidaySet struct {
	days map[time.Time]struct{}
}

// NewHolidaySet builds a set from the given dates, keyed by calendar
// day. Duplicate dates collapse.
func NewHolidaySet(dates []time.Time) *HolidaySet {
	s := &HolidaySet{days: make(map[time.Time]struct{}, len(dates))}
	for _, d := range dates {
		s.days[utcDay(d)] = struct{}{}
	}
	return s
}

// Contains reports whether the calendar day of t is flagged.
func (s *HolidaySet) Contains(t time.Time) bool {
	_, ok := s.days[utcDay(t)]
	return ok
}

// Len returns the number of distinct flagged dates.
func (s *HolidaySet) Len() int {
	return len(s.days)
}

// WeekdayHolidaysBetween counts flagged dates in the half-open interval
// (after, until] that fall on a weekday. Weekend holidays are skipped:
// the business-day count already excludes weekends, so subtracting them
// again would double-count.
func (s *HolidaySet) WeekdayHolidaysBetween(after, until time.Time) int {
	from := midnight(after)
	to := midnight(until)
	if !to.After(from) {
		return 0
	}

	count := 0
	for d := from.AddDate(0, 0, 1); !d.After(to); d = d.AddDate(0, 0, 1) {
		if isWeekday(d) && s.Contains(d) {
			count++
		}
	}
	return count
}
