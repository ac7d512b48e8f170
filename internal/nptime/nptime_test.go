package nptime

import (
	"testing"
	"time"
)

func TestDayString_ConvertsFromUTC(t *testing.T) {
	// 18:20 UTC is 00:05 the next day in Nepal.
	at := time.Date(2025, 3, 14, 18, 20, 0, 0, time.UTC)
	if got := DayString(at); got != "2025-03-15" {
		t.Fatalf("expected 2025-03-15, got %q", got)
	}
}

func TestDayString_SameDayBeforeOffsetBoundary(t *testing.T) {
	// 18:10 UTC is 23:55 local, still the same Nepal day.
	at := time.Date(2025, 3, 14, 18, 10, 0, 0, time.UTC)
	if got := DayString(at); got != "2025-03-14" {
		t.Fatalf("expected 2025-03-14, got %q", got)
	}
}

func TestDayString_IgnoresServerZone(t *testing.T) {
	ny := time.FixedZone("America/New_York", -5*3600)
	at := time.Date(2025, 12, 31, 22, 0, 0, 0, ny) // 2026-01-01 03:00 UTC
	if got := DayString(at); got != "2026-01-01" {
		t.Fatalf("expected 2026-01-01, got %q", got)
	}
}

func TestStartOfDayUTC(t *testing.T) {
	start, err := StartOfDayUTC("2025-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 3, 14, 18, 15, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("expected %v, got %v", want, start)
	}
}

func TestStartOfDayUTC_RejectsBadInput(t *testing.T) {
	if _, err := StartOfDayUTC("15-03-2025"); err == nil {
		t.Fatalf("expected error for malformed day string")
	}
}

func TestEndOfDayUTCExclusive_Is24hAfterStart(t *testing.T) {
	start, err := StartOfDayUTC("2025-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	end, err := EndOfDayUTCExclusive("2025-03-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := end.Sub(start); got != 24*time.Hour {
		t.Fatalf("expected 24h window, got %v", got)
	}
}

func TestRoundTrip_InstantToDayToBoundaries(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	day := DayString(at)
	start, err := StartOfDayUTC(day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	end, err := EndOfDayUTCExclusive(day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if at.Before(start) || !at.Before(end) {
		t.Fatalf("instant %v not inside its own day window [%v, %v)", at, start, end)
	}
}

func TestAddDays_Yesterday(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := DayString(AddDays(at, -1)); got != "2025-02-28" {
		t.Fatalf("expected 2025-02-28, got %q", got)
	}
}
