// Package dateutil holds the calendar-date primitives the grid and state
// packages are built on. Every function is pure; results are normalized to
// midnight in the location of their input.
package dateutil

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput reports a month outside January..December or a negative
// year. It signals a programming error on the caller's side.
var ErrInvalidInput = errors.New("invalid input")

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// StartOfDay returns d with the time of day zeroed.
func StartOfDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, d.Location())
}

// Today returns the current local date at midnight.
func Today() time.Time {
	return TodayFrom(time.Now)
}

// TodayFrom is Today with an injectable clock.
func TodayFrom(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	return StartOfDay(now())
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) (bool, error) {
	if year < 0 {
		return false, fmt.Errorf("%w: year %d", ErrInvalidInput, year)
	}
	return isLeap(year), nil
}

// DaysInMonth returns 28..31 for the given year and month.
func DaysInMonth(year int, month time.Month) (int, error) {
	if month < time.January || month > time.December {
		return 0, fmt.Errorf("%w: month %d", ErrInvalidInput, month)
	}
	if year < 0 {
		return 0, fmt.Errorf("%w: year %d", ErrInvalidInput, year)
	}
	return daysIn(year, month), nil
}

// Weekday returns 0..6 with 0 being Sunday.
func Weekday(d time.Time) int {
	return int(d.Weekday())
}

// MonthStart returns the first day of d's month.
func MonthStart(d time.Time) time.Time {
	y, m, _ := d.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, d.Location())
}

// WeekStart returns the Sunday on or before d.
func WeekStart(d time.Time) time.Time {
	return AddDays(d, -Weekday(d))
}

// AddDays shifts d by n calendar days. Going through time.Date keeps the
// result on midnight across DST changes.
func AddDays(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day+n, 0, 0, 0, 0, d.Location())
}

// AddWeeks shifts d by n weeks.
func AddWeeks(d time.Time, n int) time.Time {
	return AddDays(d, 7*n)
}

// AddMonths shifts d by n months. A day that does not exist in the target
// month is clamped to that month's last day: Jan 31 + 1 month is Feb 28
// (or 29), never Mar 2.
func AddMonths(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, d.Location())
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, 0, 0, 0, 0, d.Location())
}

// IsSameDay compares calendar components, ignoring the time of day.
func IsSameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsSameMonth compares year and month.
func IsSameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// IsDifferentMonthOrYear is the negation of IsSameMonth.
func IsDifferentMonthOrYear(a, b time.Time) bool {
	return !IsSameMonth(a, b)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysIn(year int, month time.Month) int {
	if month == time.February && isLeap(year) {
		return 29
	}
	return monthDays[month-1]
}
