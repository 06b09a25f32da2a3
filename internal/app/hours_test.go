package app_test

import (
	"testing"
	"time"

	"dinerank/internal/app"
	"dinerank/internal/domain"
)

// 2024-01-08 is a Monday.
func monday(hour, min int) time.Time {
	return time.Date(2024, 1, 8, hour, min, 0, 0, time.UTC)
}

func tp(day, minutes int) domain.TimePoint { return domain.TimePoint{Day: day, Minutes: minutes} }

func period(open domain.TimePoint, close domain.TimePoint) domain.OpeningPeriod {
	return domain.OpeningPeriod{Open: open, Close: &close}
}

func TestResolveOpen_NoDataAssumesOpen(t *testing.T) {
	open, until := app.ResolveOpen(domain.Hours{}, monday(12, 0))
	if !open || until != "" {
		t.Fatalf("missing hour data must not hide a venue: open=%v until=%q", open, until)
	}
}

func TestResolveOpen_StructuredSameDay(t *testing.T) {
	h := domain.Hours{Periods: []domain.OpeningPeriod{period(tp(1, 600), tp(1, 840))}} // Mon 10:00-14:00

	if open, until := app.ResolveOpen(h, monday(12, 0)); !open || until != "2:00 PM" {
		t.Fatalf("Monday noon: open=%v until=%q", open, until)
	}
	if open, _ := app.ResolveOpen(h, monday(14, 0)); !open {
		t.Fatalf("structured close bound is inclusive")
	}
	if open, _ := app.ResolveOpen(h, monday(15, 0)); open {
		t.Fatalf("Monday 15:00 should be closed")
	}
	if open, _ := app.ResolveOpen(h, monday(12, 0).AddDate(0, 0, 1)); open {
		t.Fatalf("Tuesday noon should be closed")
	}
}

func TestResolveOpen_StructuredOvernight(t *testing.T) {
	// Mon 18:00 -> Tue 02:00
	h := domain.Hours{Periods: []domain.OpeningPeriod{period(tp(1, 1080), tp(2, 120))}}

	if open, _ := app.ResolveOpen(h, monday(23, 0)); !open {
		t.Fatalf("Monday 23:00 falls in the opening evening")
	}
	if open, until := app.ResolveOpen(h, monday(1, 0).AddDate(0, 0, 1)); !open || until != "2:00 AM" {
		t.Fatalf("Tuesday 01:00 is the overnight continuation: open=%v until=%q", open, until)
	}
	if open, _ := app.ResolveOpen(h, monday(3, 0).AddDate(0, 0, 1)); open {
		t.Fatalf("Tuesday 03:00 is past close")
	}
	if open, _ := app.ResolveOpen(h, monday(1, 0)); open {
		t.Fatalf("Monday 01:00 belongs to Sunday's night, not Monday's period")
	}
}

func TestResolveOpen_StructuredAlwaysOpen(t *testing.T) {
	h := domain.Hours{Periods: []domain.OpeningPeriod{{Open: tp(0, 0)}}} // no close
	if open, until := app.ResolveOpen(h, monday(4, 30)); !open || until != "24 hours" {
		t.Fatalf("open=%v until=%q", open, until)
	}
}

func TestResolveOpen_FreeTextOvernightBothDirections(t *testing.T) {
	h := domain.Hours{WeekdayText: []string{"Monday: 10:00 AM - 2:00 AM"}}

	// Monday 01:00 is before Monday's own span and no Sunday entry covers it.
	if open, _ := app.ResolveOpen(h, monday(1, 0)); open {
		t.Fatalf("Monday 01:00 must be closed")
	}
	// Tuesday 01:00 is Monday's span continuing past midnight.
	if open, until := app.ResolveOpen(h, monday(1, 0).AddDate(0, 0, 1)); !open || until != "2:00 AM" {
		t.Fatalf("Tuesday 01:00: open=%v until=%q", open, until)
	}
	if open, until := app.ResolveOpen(h, monday(11, 0)); !open || until != "2:00 AM" {
		t.Fatalf("Monday 11:00: open=%v until=%q", open, until)
	}
}

func TestResolveOpen_FreeTextClosed(t *testing.T) {
	h := domain.Hours{WeekdayText: []string{"Sunday: Closed", "Monday: 9:00 AM - 5:00 PM"}}
	if open, _ := app.ResolveOpen(h, monday(12, 0).AddDate(0, 0, -1)); open {
		t.Fatalf("Sunday noon must be closed")
	}
	if open, _ := app.ResolveOpen(h, monday(12, 0)); !open {
		t.Fatalf("Monday noon must be open")
	}
}

func TestResolveOpen_FreeTextAlwaysOpen(t *testing.T) {
	h := domain.Hours{WeekdayText: []string{"Monday: Open 24 hours"}}
	if open, until := app.ResolveOpen(h, monday(3, 0)); !open || until != "24 hours" {
		t.Fatalf("open=%v until=%q", open, until)
	}
}

func TestResolveOpen_FreeTextPermissiveDefaults(t *testing.T) {
	// Unparsable entry
	h := domain.Hours{WeekdayText: []string{"Monday: by appointment only"}}
	if open, _ := app.ResolveOpen(h, monday(12, 0)); !open {
		t.Fatalf("unparsable text must assume open")
	}
	// No entry for today
	h = domain.Hours{WeekdayText: []string{"Tuesday: 9:00 AM - 5:00 PM"}}
	if open, _ := app.ResolveOpen(h, monday(12, 0)); !open {
		t.Fatalf("missing weekday entry must assume open")
	}
}

func TestResolveOpen_FreeText24HourClock(t *testing.T) {
	h := domain.Hours{WeekdayText: []string{"Monday: 09:00 - 23:30"}}
	if open, until := app.ResolveOpen(h, monday(10, 0)); !open || until != "11:30 PM" {
		t.Fatalf("open=%v until=%q", open, until)
	}
	if open, _ := app.ResolveOpen(h, monday(23, 30)); open {
		t.Fatalf("free-text close bound is exclusive")
	}
}

func TestResolveOpen_FreeTextHalfOpenInterval(t *testing.T) {
	h := domain.Hours{WeekdayText: []string{"Monday: 10:00 AM - 2:00 PM"}}
	if open, _ := app.ResolveOpen(h, monday(10, 0)); !open {
		t.Fatalf("open bound is inclusive")
	}
	if open, _ := app.ResolveOpen(h, monday(14, 0)); open {
		t.Fatalf("close bound is exclusive")
	}
}
