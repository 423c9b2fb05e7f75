package sim

import (
	"errors"
	"math"
	"time"
)

// Sentinel errors surfaced to the request layer before any state is
// mutated.
var (
	ErrInvalidUnit    = errors.New("invalid time unit")
	ErrNoAccounts     = errors.New("no registered accounts")
	ErrDuplicateMeter = errors.New("meter ID already exists")
)

// Advance computes the next simulation time from the current one.
// Minutes, hours and days add a fixed duration. Months add to the month
// field with year carry and clamp the day to the last valid day of the
// target month (Jan 31 + 1 month is Feb 28/29); hour and minute are
// preserved, seconds zeroed.
func Advance(current time.Time, unit string, amount int) (time.Time, error) {
	switch unit {
	case "minutes":
		return current.Add(time.Duration(amount) * time.Minute), nil
	case "hours":
		return current.Add(time.Duration(amount) * time.Hour), nil
	case "days":
		return current.Add(time.Duration(amount) * 24 * time.Hour), nil
	case "months":
		months := int(current.Month()) - 1 + amount
		year := current.Year() + floorDiv(months, 12)
		month := time.Month(floorMod(months, 12) + 1)
		day := current.Day()
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		return time.Date(year, month, day, current.Hour(), current.Minute(), 0, 0, current.Location()), nil
	default:
		return time.Time{}, ErrInvalidUnit
	}
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
