// internal/fines/fines.go
package fines

import (
	"time"

	"github.com/migueldrlds/bibliteK-sub000/internal/calendar"
)

// UnitFine is the flat charge per late business day, in whole currency
// units. The backend stores fines as integers; there is no cents
// handling anywhere in the system.
const UnitFine int64 = 10

// Fine is the outcome of assessing an overdue loan.
type Fine struct {
	Amount   int64 `json:"amount"`
	DaysLate int   `json:"days_late"`
}

// DayCounter counts chargeable days between a due date and a reference
// date. Implementations may fail (e.g. a calendar source that cannot be
// loaded), in which case the calculator falls back to naive calendar
// days so that a fine is always producible.
type DayCounter func(due, reference time.Time) (int, error)

// BusinessDays counts the weekdays in (due, reference], i.e. the due
// date itself is not chargeable.
func BusinessDays(due, reference time.Time) (int, error) {
	return calendar.CountBusinessDays(due.AddDate(0, 0, 1), reference), nil
}

// Calculator assesses overdue fines. The zero value is not usable; use
// NewCalculator.
type Calculator struct {
	countDays DayCounter
}

// NewCalculator returns a calculator backed by the given day counter,
// defaulting to BusinessDays when nil.
func NewCalculator(counter DayCounter) *Calculator {
	if counter == nil {
		counter = BusinessDays
	}
	return &Calculator{countDays: counter}
}

// sameOrAfter compares by calendar day, ignoring time-of-day.
func sameOrAfter(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	at := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bt := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return !at.Before(bt)
}

// Assess computes the fine for a loan due on due, observed at
// reference (the actual return date for a returned loan, otherwise
// now). holidayCount is the number of weekday holidays in
// (due, reference], precomputed by the caller from the flagged holiday
// set; it shrinks the chargeable day count, floored at zero.
func (c *Calculator) Assess(due, reference time.Time, holidayCount int) Fine {
	if sameOrAfter(due, reference) {
		return Fine{}
	}

	rawDays, err := c.countDays(due, reference)
	if err != nil {
		// Degraded path: charge plain calendar days rather than
		// refusing to produce a fine.
		days := int(reference.Sub(due).Hours() / 24)
		if days < 0 {
			days = 0
		}
		return Fine{Amount: int64(days) * UnitFine, DaysLate: days}
	}

	daysLate := rawDays - holidayCount
	if daysLate < 0 {
		daysLate = 0
	}
	return Fine{Amount: int64(daysLate) * UnitFine, DaysLate: daysLate}
}
