package progress

import (
	"fmt"
	"time"
)

// StreakPolicy decides how a completion changes the daily streak.
type StreakPolicy string

const (
	// StreakStrict continues the streak only when the previous activity
	// fell on the previous UTC calendar day. A second completion on the
	// same day resets the streak to 1.
	StreakStrict StreakPolicy = "strict"
	// StreakSameDayKeeps is StreakStrict, except that a repeat completion
	// on the same day leaves the streak unchanged.
	StreakSameDayKeeps StreakPolicy = "same-day-keeps"
)

// ParseStreakPolicy parses a policy name. Empty selects StreakStrict.
func ParseStreakPolicy(s string) (StreakPolicy, error) {
	switch StreakPolicy(s) {
	case "", StreakStrict:
		return StreakStrict, nil
	case StreakSameDayKeeps:
		return StreakSameDayKeeps, nil
	default:
		return "", fmt.Errorf("unknown streak policy %q (valid: %s, %s)", s, StreakStrict, StreakSameDayKeeps)
	}
}

// Streak is the outcome of applying a policy.
type Streak struct {
	Days int
	// SameDay is set when the previous activity was earlier today.
	SameDay bool
}

// Next computes the streak after an activity at now, given the previous
// streak and last activity time. Days are compared in UTC.
func (p StreakPolicy) Next(current int, last *time.Time, now time.Time) Streak {
	if last == nil {
		return Streak{Days: 1}
	}
	today := day(now)
	prev := day(*last)

	switch {
	case prev.Equal(today.AddDate(0, 0, -1)):
		return Streak{Days: current + 1}
	case prev.Equal(today):
		if p == StreakSameDayKeeps {
			return Streak{Days: max(current, 1), SameDay: true}
		}
		return Streak{Days: 1, SameDay: true}
	default:
		return Streak{Days: 1}
	}
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
