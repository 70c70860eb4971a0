package calendar

import (
	"errors"
	"testing"
	"time"
)

func TestWeekIndexInMonth(t *testing.T) {
	// June 2024 starts on a Saturday.
	tests := []struct {
		day  time.Time
		want int
	}{
		{date(2024, 6, 1), 0},
		{date(2024, 6, 2), 1},
		{date(2024, 6, 8), 1},
		{date(2024, 6, 9), 2},
		{date(2024, 6, 30), 5},
		{date(2024, 2, 29), 4},
	}
	for _, tt := range tests {
		got, err := WeekIndexInMonth(tt.day)
		if err != nil {
			t.Fatalf("WeekIndexInMonth(%v): %v", tt.day, err)
		}
		if got != tt.want {
			t.Fatalf("WeekIndexInMonth(%v)=%d want %d", tt.day, got, tt.want)
		}
	}
	if got, _ := WeekOfMonth(date(2024, 6, 8)); got != 2 {
		t.Fatalf("WeekOfMonth=%d want 2", got)
	}
}

func TestWeekIndexMatchesGridRow(t *testing.T) {
	svc := NewService()
	grid, err := svc.MonthGrid(2023, time.July, nil)
	if err != nil {
		t.Fatal(err)
	}
	for row, week := range grid.Weeks() {
		for _, d := range week {
			if !d.IsCurrentPeriod {
				continue
			}
			if idx, _ := WeekIndexInMonth(d.Date); idx != row {
				t.Fatalf("%v: index %d, grid row %d", d.Date, idx, row)
			}
		}
	}
}

func TestWeekIndexWithinLabels(t *testing.T) {
	if _, err := WeekIndexWithin(date(2024, 6, 30), 5); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if idx, err := WeekIndexWithin(date(2024, 6, 30), 6); err != nil || idx != 5 {
		t.Fatalf("WeekIndexWithin=%d, %v", idx, err)
	}
}
