package epiweek

import (
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestWeek(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		// 2024-01-01 is a Monday: days before the first Sunday fall in week 1.
		{"first day of 2024", date(2024, 1, 1), 1},
		{"saturday before first sunday 2024", date(2024, 1, 6), 1},
		{"first sunday of 2024", date(2024, 1, 7), 2},
		{"day after first sunday", date(2024, 1, 8), 2},
		// 2023-01-01 is itself a Sunday, so week 2 starts immediately.
		{"first day of 2023 (sunday)", date(2023, 1, 1), 2},
		{"last day of 2023", date(2023, 12, 31), 54},
		{"mid year", date(2024, 6, 15), 24},
		{"last day of leap 2024", date(2024, 12, 31), 53},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Week(tt.date); got != tt.want {
				t.Errorf("Week(%v) = %d, want %d", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestWeekIsStable(t *testing.T) {
	d := date(2024, 5, 20)
	first := Week(d)
	for i := 0; i < 10; i++ {
		if got := Week(d); got != first {
			t.Fatalf("Week not stable: first call %d, later call %d", first, got)
		}
	}
}

func TestWeekRange(t *testing.T) {
	// Every day of several years must land in [1, 54].
	for _, year := range []int{2020, 2023, 2024, 2025} {
		for d := date(year, 1, 1); d.Year() == year; d = d.AddDate(0, 0, 1) {
			w := Week(d)
			if w < 1 || w > 54 {
				t.Fatalf("Week(%v) = %d, outside [1, 54]", d.Format("2006-01-02"), w)
			}
		}
	}
}

func TestWeekNeverDecreasesWithinYear(t *testing.T) {
	prev := 0
	for d := date(2024, 1, 1); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		w := Week(d)
		if w < prev {
			t.Fatalf("week decreased within year at %v: %d -> %d", d.Format("2006-01-02"), prev, w)
		}
		prev = w
	}
}

func TestYearWeek(t *testing.T) {
	year, week := YearWeek(date(2024, 3, 10))
	if year != 2024 {
		t.Errorf("year = %d, want 2024", year)
	}
	if week != Week(date(2024, 3, 10)) {
		t.Errorf("week = %d, want %d", week, Week(date(2024, 3, 10)))
	}
}
