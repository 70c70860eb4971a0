// Package state tracks what a calendar view shows: the selected date and the
// period (month or week) on screen. The two are coupled but distinct: the
// user can page away from the selection, and the selection itself may be
// owned by the embedding host instead of the controller.
//
// A Controller is not safe for concurrent use. It belongs to one view and
// every mutation must come from that view's event loop.
package state

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lululau/calgrid/internal/calendar"
	"github.com/lululau/calgrid/internal/dateutil"
)

// Mode decides whether the period is a month or a week.
type Mode int

const (
	ModeMonth Mode = iota
	ModeWeek
)

func (m Mode) String() string {
	switch m {
	case ModeMonth:
		return "month"
	case ModeWeek:
		return "week"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "month" or "week".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "month", "":
		return ModeMonth, nil
	case "week":
		return ModeWeek, nil
	default:
		return ModeMonth, fmt.Errorf("unknown mode %q", s)
	}
}

// Selection is either Controlled or Uncontrolled.
type Selection interface {
	Date() time.Time
	selection()
}

// Controlled is a selection owned by the host. The controller reports
// changes through OnDateChange and waits for the host to feed the value back
// through Reconcile.
type Controlled struct {
	Value time.Time
}

// Uncontrolled is a selection owned by the controller.
type Uncontrolled struct {
	Value time.Time
}

func (s Controlled) Date() time.Time   { return s.Value }
func (s Uncontrolled) Date() time.Time { return s.Value }
func (Controlled) selection()          {}
func (Uncontrolled) selection()        {}

// State is a read-only view of a controller.
type State struct {
	SelectedDate  time.Time
	CurrentPeriod time.Time
	Mode          Mode
	Controlled    bool
}

// PeriodChanged is emitted by Reconcile when a new controlled value falls
// outside the displayed period.
type PeriodChanged struct {
	From time.Time
	To   time.Time
}

// Options seeds a controller.
type Options struct {
	// DefaultDate seeds an uncontrolled selection; nil means today.
	DefaultDate *time.Time
	// ControlledDate, when set, makes the selection controlled.
	ControlledDate *time.Time
	// OnDateChange receives the normalized date whenever the user selects a
	// date on a controlled controller.
	OnDateChange func(time.Time)
	Now          func() time.Time
	Logger       *slog.Logger
}

// Controller is the month-stepping calendar state.
type Controller struct {
	selection Selection
	period    time.Time
	mode      Mode
	onChange  func(time.Time)
	logger    *slog.Logger
}

// New creates a controller showing the month of the initial selection.
func New(opts Options) *Controller {
	c := &Controller{
		onChange: opts.OnDateChange,
		logger:   opts.Logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	switch {
	case opts.ControlledDate != nil:
		c.selection = Controlled{Value: dateutil.StartOfDay(*opts.ControlledDate)}
	case opts.DefaultDate != nil:
		c.selection = Uncontrolled{Value: dateutil.StartOfDay(*opts.DefaultDate)}
	default:
		c.selection = Uncontrolled{Value: dateutil.TodayFrom(opts.Now)}
	}
	c.period = dateutil.MonthStart(c.selection.Date())
	return c
}

// Selection returns the current selection variant.
func (c *Controller) Selection() Selection {
	return c.selection
}

// SelectedDate is the authoritative selected date.
func (c *Controller) SelectedDate() time.Time {
	return c.selection.Date()
}

// CurrentPeriod is the first day of the displayed month, or the first day of
// the displayed week in week mode.
func (c *Controller) CurrentPeriod() time.Time {
	return c.period
}

// Mode reports the period granularity.
func (c *Controller) Mode() Mode {
	return c.mode
}

// IsControlled reports whether the host owns the selection.
func (c *Controller) IsControlled() bool {
	_, ok := c.selection.(Controlled)
	return ok
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() State {
	return State{
		SelectedDate:  c.SelectedDate(),
		CurrentPeriod: c.period,
		Mode:          c.mode,
		Controlled:    c.IsControlled(),
	}
}

// SelectDate handles a tap on a day cell. An uncontrolled selection changes
// immediately; a controlled one only notifies the host. The period follows d
// in both cases when d lies outside it.
func (c *Controller) SelectDate(d time.Time) {
	d = dateutil.StartOfDay(d)

	switch sel := c.selection.(type) {
	case Uncontrolled:
		sel.Value = d
		c.selection = sel
	case Controlled:
		// The host decides whether d takes effect.
	}

	if !c.contains(d) {
		c.setPeriod(c.derive(d), "select")
	}
	c.logger.Debug("calendar date selected", "date", d.Format(time.DateOnly), "controlled", c.IsControlled())

	if _, ok := c.selection.(Controlled); ok && c.onChange != nil {
		c.onChange(d)
	}
}

// PrevPeriod pages one period back without touching the selection.
func (c *Controller) PrevPeriod() {
	c.step(-1)
}

// NextPeriod pages one period forward without touching the selection.
func (c *Controller) NextPeriod() {
	c.step(1)
}

// ShowDate pages straight to the period containing d. The selection is left
// alone, as with PrevPeriod and NextPeriod.
func (c *Controller) ShowDate(d time.Time) {
	c.setPeriod(c.derive(dateutil.StartOfDay(d)), "jump")
}

// Reconcile feeds the host's current controlled value into the controller.
// The host calls it once per evaluation cycle, before generating a grid. It
// reports a PeriodChanged when the value differs from the last one seen and
// lies outside the displayed period. On an uncontrolled controller it does
// nothing.
func (c *Controller) Reconcile(controlled time.Time) (PeriodChanged, bool) {
	sel, ok := c.selection.(Controlled)
	if !ok {
		return PeriodChanged{}, false
	}
	value := dateutil.StartOfDay(controlled)
	if dateutil.IsSameDay(value, sel.Value) {
		return PeriodChanged{}, false
	}
	c.selection = Controlled{Value: value}
	if c.contains(value) {
		return PeriodChanged{}, false
	}
	from := c.period
	c.setPeriod(c.derive(value), "reconcile")
	return PeriodChanged{From: from, To: c.period}, true
}

// Grid generates the grid for the displayed period.
func (c *Controller) Grid(svc *calendar.Service) (calendar.Grid, error) {
	selected := c.SelectedDate()
	if c.mode == ModeWeek {
		return svc.WeekGrid(c.period, selected), nil
	}
	return svc.MonthGrid(c.period.Year(), c.period.Month(), &selected)
}

// Pages generates the previous, current and next grids for a pager.
func (c *Controller) Pages(svc *calendar.Service) ([3]calendar.Grid, error) {
	if c.mode == ModeWeek {
		return svc.WeekPages(c.period, c.SelectedDate()), nil
	}
	return svc.MonthPages(c.period, c.SelectedDate())
}

func (c *Controller) step(n int) {
	switch c.mode {
	case ModeWeek:
		c.setPeriod(dateutil.AddWeeks(c.period, n), "step")
	default:
		c.setPeriod(dateutil.AddMonths(c.period, n), "step")
	}
}

func (c *Controller) derive(d time.Time) time.Time {
	if c.mode == ModeWeek {
		return dateutil.WeekStart(d)
	}
	return dateutil.MonthStart(d)
}

func (c *Controller) contains(d time.Time) bool {
	if c.mode == ModeWeek {
		return !d.Before(c.period) && d.Before(dateutil.AddWeeks(c.period, 1))
	}
	return dateutil.IsSameMonth(d, c.period)
}

func (c *Controller) setPeriod(p time.Time, reason string) {
	if p.Equal(c.period) {
		return
	}
	c.logger.Debug("calendar period changed",
		"from", c.period.Format(time.DateOnly),
		"to", p.Format(time.DateOnly),
		"mode", c.mode.String(),
		"reason", reason,
	)
	c.period = p
}
