package calendar

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	calendarlib "github.com/Lofanmi/chinese-calendar-golang/calendar"

	"github.com/lululau/calgrid/internal/dateutil"
	"github.com/lululau/calgrid/internal/holidays"
)

// Gregorian year range covered by the lunar calendar library. Days outside
// it are still generated, just without lunar labels.
const (
	MinLunarYear = 1900
	MaxLunarYear = 3000
)

const (
	daysPerWeek     = 7
	MinWeeksInMonth = 4
	MaxWeeksInMonth = 6
	monthKeyLayout  = "2006-01"
	weekKeyLayout   = "2006-01-02"
)

var (
	// ErrInvalidInput is dateutil.ErrInvalidInput re-exported for callers
	// that only import this package.
	ErrInvalidInput = dateutil.ErrInvalidInput
	// ErrInvalidState guards the 4..6 weeks-per-month invariant.
	ErrInvalidState = errors.New("invalid state")
	// ErrOutOfRange is returned when a week index has no matching label.
	ErrOutOfRange = errors.New("out of range")
)

// ViewMode selects what the plain renderer prints.
type ViewMode int

const (
	ModeMonth ViewMode = iota
	ModeWeek
	ModeYear
)

// Request captures the initial period to display.
type Request struct {
	Year  int
	Month int
	// Day is optional; zero means the first of the month.
	Day  int
	Mode ViewMode
}

// Normalize keeps the month within 1..12 by rolling the year value.
func (r Request) Normalize() Request {
	for r.Month > 12 {
		r.Month -= 12
		r.Year++
	}
	for r.Month < 1 {
		r.Month += 12
		r.Year--
	}
	return r
}

// Anchor is the date the request points at, used to seed a state controller.
func (r Request) Anchor() time.Time {
	r = r.Normalize()
	day := r.Day
	if day < 1 {
		day = 1
	}
	anchor := time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.Local)
	if last, err := dateutil.DaysInMonth(anchor.Year(), anchor.Month()); err == nil && day > last {
		day = last
	}
	return dateutil.AddDays(anchor, day-1)
}

// Day is one cell of a grid.
type Day struct {
	Date time.Time
	// IsCurrentPeriod is false for spillover days from an adjacent month.
	IsCurrentPeriod bool
	IsToday         bool
	IsSelected      bool

	LunarDayAlias   string
	LunarMonthAlias string
	SolarTerm       string
	HolidayInfo     *holidays.Info
	hasLunarData    bool
}

// SecondaryLabel selects the string that should be rendered beneath the
// Gregorian date. Solar terms take precedence, followed by lunar month names
// whenever it is the first day of a lunar month.
func (d Day) SecondaryLabel() string {
	if d.SolarTerm != "" {
		return d.SolarTerm
	}
	if d.LunarDayAlias == "初一" && d.LunarMonthAlias != "" {
		return d.LunarMonthAlias
	}
	return d.LunarDayAlias
}

// HasLunarData reports whether lunar metadata was successfully calculated.
func (d Day) HasLunarData() bool {
	return d.hasLunarData
}

// Grid is an ordered run of days made of complete 7-day rows.
type Grid struct {
	Key        string
	Days       []Day
	WeeksCount int
}

// Weeks splits the grid into rows.
func (g Grid) Weeks() [][]Day {
	return slices.Collect(slices.Chunk(g.Days, daysPerWeek))
}

// Selected returns the selected cell, if the grid has one.
func (g Grid) Selected() (Day, bool) {
	for _, d := range g.Days {
		if d.IsSelected {
			return d, true
		}
	}
	return Day{}, false
}

// Service materialises grids. It holds no cache: every call recomputes.
type Service struct {
	now         func() time.Time
	holidayData holidays.Table
	lunar       bool
}

// Option configures the Service.
type Option func(*Service)

// WithNow overrides the clock, which is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithHolidays sets the holiday data for the service.
func WithHolidays(data holidays.Table) Option {
	return func(s *Service) {
		s.holidayData = data
	}
}

// WithLunar toggles lunar day and solar term labels.
func WithLunar(enabled bool) Option {
	return func(s *Service) {
		s.lunar = enabled
	}
}

// NewService constructs a Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasHolidayData reports whether a holiday table is attached.
func (s *Service) HasHolidayData() bool {
	return len(s.holidayData) > 0
}

// Today is the service clock's current date.
func (s *Service) Today() time.Time {
	return dateutil.TodayFrom(s.now)
}

// WeeksInMonth returns how many 7-day rows the month grid needs.
func WeeksInMonth(year int, month time.Month) (int, error) {
	days, err := dateutil.DaysInMonth(year, month)
	if err != nil {
		return 0, err
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	weeks := (dateutil.Weekday(first) + days + daysPerWeek - 1) / daysPerWeek
	if weeks < MinWeeksInMonth || weeks > MaxWeeksInMonth {
		return 0, fmt.Errorf("%w: %d weeks in %d-%02d", ErrInvalidState, weeks, year, month)
	}
	return weeks, nil
}

// MonthDays returns the cells of the month grid as a sequence. Each range
// over it recomputes the cells, including the today flag.
func (s *Service) MonthDays(year int, month time.Month, selected *time.Time) (iter.Seq[Day], error) {
	weeks, err := WeeksInMonth(year, month)
	if err != nil {
		return nil, err
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	start := dateutil.AddDays(first, -dateutil.Weekday(first))
	total := weeks * daysPerWeek

	return func(yield func(Day) bool) {
		today := s.Today()
		for i := 0; i < total; i++ {
			date := dateutil.AddDays(start, i)
			day := s.buildDay(date, dateutil.IsSameMonth(date, first), today)
			day.IsSelected = selected != nil && dateutil.IsSameDay(date, *selected)
			if !yield(day) {
				return
			}
		}
	}, nil
}

// MonthGrid builds the full grid for a month: complete weeks starting on the
// Sunday on or before the 1st.
func (s *Service) MonthGrid(year int, month time.Month, selected *time.Time) (Grid, error) {
	seq, err := s.MonthDays(year, month, selected)
	if err != nil {
		return Grid{}, err
	}
	days := slices.Collect(seq)
	return Grid{
		Key:        time.Date(year, month, 1, 0, 0, 0, 0, time.Local).Format(monthKeyLayout),
		Days:       days,
		WeeksCount: len(days) / daysPerWeek,
	}, nil
}

// WeekDays returns the seven cells starting at weekStart. The week has no
// period of its own: a cell is in the current period when it shares a month
// with selected.
func (s *Service) WeekDays(weekStart, selected time.Time) iter.Seq[Day] {
	start := dateutil.StartOfDay(weekStart)
	return func(yield func(Day) bool) {
		today := s.Today()
		for i := 0; i < daysPerWeek; i++ {
			date := dateutil.AddDays(start, i)
			day := s.buildDay(date, dateutil.IsSameMonth(date, selected), today)
			day.IsSelected = dateutil.IsSameDay(date, selected)
			if !yield(day) {
				return
			}
		}
	}
}

// WeekGrid builds a one-row grid.
func (s *Service) WeekGrid(weekStart, selected time.Time) Grid {
	return Grid{
		Key:        dateutil.StartOfDay(weekStart).Format(weekKeyLayout),
		Days:       slices.Collect(s.WeekDays(weekStart, selected)),
		WeeksCount: 1,
	}
}

// MonthPages returns the previous, current and next month grids around
// current, as a pager needs them.
func (s *Service) MonthPages(current, selected time.Time) ([3]Grid, error) {
	var pages [3]Grid
	for i, offset := range []int{-1, 0, 1} {
		month := dateutil.AddMonths(dateutil.MonthStart(current), offset)
		grid, err := s.MonthGrid(month.Year(), month.Month(), &selected)
		if err != nil {
			return pages, err
		}
		pages[i] = grid
	}
	return pages, nil
}

// WeekPages returns the previous, current and next week grids around the
// week containing current.
func (s *Service) WeekPages(current, selected time.Time) [3]Grid {
	start := dateutil.WeekStart(current)
	return [3]Grid{
		s.WeekGrid(dateutil.AddWeeks(start, -1), selected),
		s.WeekGrid(start, selected),
		s.WeekGrid(dateutil.AddWeeks(start, 1), selected),
	}
}

// Year returns the twelve month grids of a year.
func (s *Service) Year(year int) ([]Grid, error) {
	months := make([]Grid, 0, 12)
	for m := time.January; m <= time.December; m++ {
		grid, err := s.MonthGrid(year, m, nil)
		if err != nil {
			return nil, err
		}
		months = append(months, grid)
	}
	return months, nil
}

func (s *Service) buildDay(day time.Time, inPeriod bool, today time.Time) Day {
	d := Day{
		Date:            day,
		IsCurrentPeriod: inPeriod,
		IsToday:         dateutil.IsSameDay(day, today),
	}
	if s.holidayData != nil {
		d.HolidayInfo = s.holidayData.Lookup(day)
	}
	if !s.lunar || day.Year() < MinLunarYear || day.Year() > MaxLunarYear {
		return d
	}

	cal := calendarlib.BySolar(
		int64(day.Year()),
		int64(day.Month()),
		int64(day.Day()),
		12, 0, 0,
	)
	d.LunarDayAlias = cal.Lunar.DayAlias()
	d.LunarMonthAlias = cal.Lunar.MonthAlias()
	d.hasLunarData = true
	if solarterm := cal.Solar.CurrentSolarterm; solarterm != nil {
		if solarterm.IsInDay(&day) {
			d.SolarTerm = solarterm.Alias()
		}
	}
	return d
}
