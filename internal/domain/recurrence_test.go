package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrence_Weekly(t *testing.T) {
	// 2024-01-01 is a Monday.
	got := NextOccurrence(date(2024, 1, 1), FrequencyWeekly, time.Monday, 0)
	want := date(2024, 1, 8)
	if !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}
	if got.Weekday() != time.Monday {
		t.Fatalf("weekday = %v, want Monday", got.Weekday())
	}
}

func TestNextOccurrence_Biweekly(t *testing.T) {
	got := NextOccurrence(date(2024, 1, 1), FrequencyBiweekly, time.Monday, 0)
	want := date(2024, 1, 15)
	if !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}
}

func TestNextOccurrence_MonthlyLandsOnTargetWeekday(t *testing.T) {
	got := NextOccurrence(date(2024, 1, 1), FrequencyMonthly, time.Monday, 0)
	if got.Weekday() != time.Monday {
		t.Fatalf("weekday = %v, want Monday", got.Weekday())
	}
	if !got.After(date(2024, 1, 1)) {
		t.Fatalf("next = %v, want strictly after from", got)
	}
	// +1 month = 2024-02-01 (Thursday), walk forward to Monday 2024-02-05.
	want := date(2024, 2, 5)
	if !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}
}

// The monthly rule adds a calendar month and walks to the target weekday. It
// does not preserve the ordinal weekday within the month: starting from the
// 1st Monday of January 2024 it lands on the 1st Monday of February, but a
// later month with a different day-of-month pattern can shift the ordinal.
// This pins the current behavior rather than guessing at product intent.
func TestNextOccurrence_MonthlyDoesNotPreserveOrdinalWeekday(t *testing.T) {
	// 2024-04-29 is the 5th Monday of April. +1 month = 2024-05-29
	// (Wednesday), walk forward to Monday 2024-06-03: the advance skipped
	// May's Mondays entirely.
	got := NextOccurrence(date(2024, 4, 29), FrequencyMonthly, time.Monday, 0)
	want := date(2024, 6, 3)
	if !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}
}

func TestNextOccurrence_CustomInterval(t *testing.T) {
	got := NextOccurrence(date(2024, 1, 1), FrequencyCustom, time.Monday, 10)
	want := date(2024, 1, 11)
	if !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}
}

func TestNextOccurrence_CustomIntervalDefaultsToSevenDays(t *testing.T) {
	got := NextOccurrence(date(2024, 1, 1), FrequencyCustom, time.Monday, 0)
	want := date(2024, 1, 8)
	if !got.Equal(want) {
		t.Fatalf("next = %v, want %v", got, want)
	}
}

func TestNextOccurrence_AlwaysStrictlyAfterFrom(t *testing.T) {
	from := date(2024, 3, 15)
	for _, freq := range []Frequency{FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyCustom} {
		for day := time.Sunday; day <= time.Saturday; day++ {
			got := NextOccurrence(from, freq, day, 3)
			if !got.After(from) {
				t.Fatalf("freq %s day %v: next = %v, not after %v", freq, day, got, from)
			}
			if freq == FrequencyMonthly && got.Weekday() != day {
				t.Fatalf("freq %s: weekday = %v, want %v", freq, got.Weekday(), day)
			}
		}
	}
}

func TestFirstOccurrence_WithinSixDaysOnTargetWeekday(t *testing.T) {
	start := date(2024, 1, 3) // a Wednesday
	for day := time.Sunday; day <= time.Saturday; day++ {
		got := FirstOccurrence(start, day)
		if got.Weekday() != day {
			t.Fatalf("day %v: weekday = %v", day, got.Weekday())
		}
		if got.Before(start) || got.After(start.AddDate(0, 0, 6)) {
			t.Fatalf("day %v: got %v, want within [start, start+6]", day, got)
		}
	}
}

func TestFirstOccurrence_StartDayCountsAsFirst(t *testing.T) {
	start := date(2024, 1, 1) // a Monday
	got := FirstOccurrence(start, time.Monday)
	if !got.Equal(start) {
		t.Fatalf("got %v, want %v", got, start)
	}
}

func TestDateOnly_StripsTimeAndNormalizesToUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	// 23:30 New York on Jan 1 is already Jan 2 in UTC.
	got := DateOnly(time.Date(2024, 1, 1, 23, 30, 0, 0, loc))
	want := date(2024, 1, 2)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
