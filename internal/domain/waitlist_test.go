package domain

import (
	"testing"
	"time"
)

func entryWith(priority Priority, createdAt time.Time) WaitlistEntry {
	return WaitlistEntry{Priority: priority, CreatedAt: createdAt}
}

func TestRanksAhead_PriorityBeatsJoinOrder(t *testing.T) {
	earlyNormal := entryWith(PriorityNormal, date(2024, 1, 1))
	lateVIP := entryWith(PriorityVIP, date(2024, 1, 2))

	if !RanksAhead(lateVIP, earlyNormal) {
		t.Fatalf("vip should rank ahead of normal regardless of join order")
	}
	if RanksAhead(earlyNormal, lateVIP) {
		t.Fatalf("normal should not rank ahead of vip")
	}
}

func TestRanksAhead_SamePriorityFIFO(t *testing.T) {
	first := entryWith(PriorityHigh, date(2024, 1, 1))
	second := entryWith(PriorityHigh, date(2024, 1, 2))

	if !RanksAhead(first, second) {
		t.Fatalf("earlier join should rank ahead within a tier")
	}
	if RanksAhead(second, first) {
		t.Fatalf("later join should not rank ahead within a tier")
	}
}

func TestMatchesSlotTime_FlexibleMatchesAnything(t *testing.T) {
	e := WaitlistEntry{FlexibleTime: true, PreferredTimeStart: "18:00", PreferredTimeEnd: "19:00"}
	if !e.MatchesSlotTime("08:00") {
		t.Fatalf("flexible entry should match any slot time")
	}
}

func TestMatchesSlotTime_NoPreferenceMatchesAnything(t *testing.T) {
	e := WaitlistEntry{}
	if !e.MatchesSlotTime("08:00") {
		t.Fatalf("entry without a preferred window should match any slot time")
	}
}

func TestMatchesSlotTime_Window(t *testing.T) {
	e := WaitlistEntry{PreferredTimeStart: "10:00", PreferredTimeEnd: "12:00"}

	cases := []struct {
		slot string
		want bool
	}{
		{"09:59", false},
		{"10:00", true},
		{"11:30", true},
		{"12:00", true},
		{"12:01", false},
	}
	for _, tc := range cases {
		if got := e.MatchesSlotTime(tc.slot); got != tc.want {
			t.Fatalf("slot %s: match = %v, want %v", tc.slot, got, tc.want)
		}
	}
}

func TestMatchesSlotTime_OpenEndedWindow(t *testing.T) {
	e := WaitlistEntry{PreferredTimeStart: "14:00"}
	if e.MatchesSlotTime("13:00") {
		t.Fatalf("slot before start should not match")
	}
	if !e.MatchesSlotTime("23:00") {
		t.Fatalf("open-ended window should match any slot at or after start")
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("09:45")
	if err != nil {
		t.Fatalf("ParseClock error: %v", err)
	}
	if got != 9*60+45 {
		t.Fatalf("minutes = %d, want %d", got, 9*60+45)
	}

	for _, bad := range []string{"", "9", "25:00", "09:60", "ab:cd"} {
		if _, err := ParseClock(bad); err == nil {
			t.Fatalf("ParseClock(%q) expected error", bad)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	got, err := ParseWeekday("Monday")
	if err != nil {
		t.Fatalf("ParseWeekday error: %v", err)
	}
	if got != time.Monday {
		t.Fatalf("weekday = %v, want Monday", got)
	}
	if _, err := ParseWeekday("someday"); err == nil {
		t.Fatalf("expected error for invalid weekday")
	}
}
