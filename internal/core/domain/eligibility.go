package domain

import "time"

// DefaultWithdrawalPeriodDays is the statutory withdrawal window.
const DefaultWithdrawalPeriodDays = 14

// Eligibility is the outcome of evaluating a payment against the withdrawal window.
type Eligibility struct {
	DaysElapsed  int
	WithinPeriod bool
}

// EvaluateEligibility counts whole UTC calendar days between paymentDate and now.
// The boundary is inclusive: a request on day periodDays is still within the window.
// A payment dated after now counts as day zero.
func EvaluateEligibility(paymentDate, now time.Time, periodDays int) Eligibility {
	days := int(utcDay(now).Sub(utcDay(paymentDate)).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return Eligibility{
		DaysElapsed:  days,
		WithinPeriod: days <= periodDays,
	}
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
