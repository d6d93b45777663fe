package domain

import "time"

const defaultCustomIntervalDays = 7

// DateOnly truncates t to midnight UTC. Schedule and waitlist dates carry no
// time-of-day component; the preferred time travels separately as HH:mm.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextOccurrence computes the occurrence following from for the given cadence.
//
// The monthly rule adds one calendar month and then walks forward to the
// target weekday. It intentionally does not preserve the ordinal weekday
// within the month ("2nd Monday" can drift); see the calculator tests.
func NextOccurrence(from time.Time, frequency Frequency, day time.Weekday, customIntervalDays int) time.Time {
	from = DateOnly(from)
	switch frequency {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return from.AddDate(0, 0, 14)
	case FrequencyMonthly:
		next := from.AddDate(0, 1, 0)
		for next.Weekday() != day {
			next = next.AddDate(0, 0, 1)
		}
		return next
	case FrequencyCustom:
		interval := customIntervalDays
		if interval <= 0 {
			interval = defaultCustomIntervalDays
		}
		return from.AddDate(0, 0, interval)
	default:
		return from.AddDate(0, 0, 7)
	}
}

// FirstOccurrence returns the first date on or after start that falls on day.
func FirstOccurrence(start time.Time, day time.Weekday) time.Time {
	next := DateOnly(start)
	for next.Weekday() != day {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
