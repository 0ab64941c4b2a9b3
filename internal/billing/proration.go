package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Proration is the unused-time credit computed when a contract ends mid-cycle.
type Proration struct {
	DaysInCycle int
	DaysUsed    int
	DailyRate   decimal.Decimal
	// Credit is DailyRate times the unused days, rounded half-up to cents.
	Credit decimal.Decimal
}

// prorate computes the unused-time credit for a contract with the given
// monthly amount that started at startedAt and is being closed at now.
//
// The cycle length is the true number of days in the calendar month holding
// startedAt, not a fixed 30. Days used is whole elapsed days, floored, and
// clamped to zero so clock skew can never produce negative usage (which would
// inflate the credit past a full month).
func prorate(monthlyAmount decimal.Decimal, startedAt, now time.Time) (Proration, error) {
	if monthlyAmount.IsNegative() {
		return Proration{}, ErrInvalidAmount
	}

	cycle := daysInMonth(startedAt)

	used := int(now.Sub(startedAt).Hours() / 24)
	if used < 0 {
		used = 0
	}

	unused := cycle - used
	if unused < 0 {
		unused = 0
	}

	rate := monthlyAmount.Div(decimal.NewFromInt(int64(cycle)))
	credit := rate.Mul(decimal.NewFromInt(int64(unused))).Round(2)

	return Proration{
		DaysInCycle: cycle,
		DaysUsed:    used,
		DailyRate:   rate,
		Credit:      credit,
	}, nil
}

// nextBillingAnchored returns the next billing date after now, anchored to
// the billing day-of-month carried over from the previous contract. If the
// anchor day in the current month has already passed, the date rolls forward
// exactly one month. Anchor days beyond the target month's length clamp to
// its last day (a day-31 anchor bills on Apr 30, not May 1).
func nextBillingAnchored(anchorDay int, now time.Time) time.Time {
	candidate := dateWithDay(now.Year(), now.Month(), anchorDay, now.Location())
	if !candidate.After(truncateToDay(now)) {
		candidate = dateWithDay(now.Year(), now.Month()+1, anchorDay, now.Location())
	}
	return candidate
}

// daysInMonth returns the number of days in the calendar month containing t.
func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// dateWithDay builds a date in the given month, clamping day to the month
// length instead of letting time.Date overflow into the next month.
func dateWithDay(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
