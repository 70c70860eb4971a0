package calendar

import (
	"fmt"
	"time"

	"github.com/lululau/calgrid/internal/dateutil"
)

// WeekIndexInMonth returns the 0-based row of date within its month grid.
func WeekIndexInMonth(date time.Time) (int, error) {
	return WeekIndexWithin(date, MaxWeeksInMonth)
}

// WeekIndexWithin is WeekIndexInMonth checked against a label set of the
// given size, so that callers indexing into week labels cannot overrun it.
func WeekIndexWithin(date time.Time, labels int) (int, error) {
	first := dateutil.MonthStart(date)
	idx := (dateutil.Weekday(first) + date.Day() - 1) / daysPerWeek
	if idx < 0 || idx >= labels {
		return 0, fmt.Errorf("%w: week index %d of %s (labels: %d)", ErrOutOfRange, idx, date.Format(weekKeyLayout), labels)
	}
	return idx, nil
}

// WeekOfMonth is the 1-based week ordinal of date.
func WeekOfMonth(date time.Time) (int, error) {
	idx, err := WeekIndexInMonth(date)
	if err != nil {
		return 0, err
	}
	return idx + 1, nil
}
