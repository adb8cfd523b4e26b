// internal/fines/fines_test.go
package fines

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAssessNotYetOverdue(t *testing.T) {
	calc := NewCalculator(nil)

	due := date(2024, 1, 8)
	assert.Equal(t, Fine{}, calc.Assess(due, due, 0))
	assert.Equal(t, Fine{}, calc.Assess(due, date(2024, 1, 5), 0))

	// same calendar day with a later clock time is still not overdue
	ref := time.Date(2024, 1, 8, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, Fine{}, calc.Assess(due, ref, 0))
}

func TestAssessOverdue(t *testing.T) {
	calc := NewCalculator(nil)

	// due Monday 2024-01-01, returned Monday 2024-01-08: Tue through
	// Mon is five business days once the weekend drops out.
	fine := calc.Assess(date(2024, 1, 1), date(2024, 1, 8), 0)
	assert.Equal(t, 5, fine.DaysLate)
	assert.Equal(t, int64(50), fine.Amount)

	// one day late, weekday
	fine = calc.Assess(date(2024, 1, 1), date(2024, 1, 2), 0)
	assert.Equal(t, 1, fine.DaysLate)
	assert.Equal(t, int64(10), fine.Amount)

	// due Friday, returned Monday: only Monday is chargeable
	fine = calc.Assess(date(2024, 1, 5), date(2024, 1, 8), 0)
	assert.Equal(t, 1, fine.DaysLate)
}

func TestAssessHolidayAdjustment(t *testing.T) {
	calc := NewCalculator(nil)
	due, ref := date(2024, 1, 1), date(2024, 1, 8)

	base := calc.Assess(due, ref, 0)
	adjusted := calc.Assess(due, ref, 2)
	assert.Equal(t, base.DaysLate-2, adjusted.DaysLate)
	assert.Equal(t, base.Amount-2*UnitFine, adjusted.Amount)

	// more holidays than late days floors at zero
	floored := calc.Assess(due, ref, 99)
	assert.Equal(t, Fine{}, floored)
}

func TestAssessFallsBackToCalendarDays(t *testing.T) {
	calc := NewCalculator(func(due, ref time.Time) (int, error) {
		return 0, errors.New("calendar unavailable")
	})

	fine := calc.Assess(date(2024, 1, 1), date(2024, 1, 8), 3)
	assert.Equal(t, 7, fine.DaysLate)
	assert.Equal(t, int64(70), fine.Amount)
}
