package state

import "github.com/lululau/calgrid/internal/dateutil"

// Expandable is a Controller that can collapse from a month grid into the
// single week holding the selection. Mode only changes through SetMode.
type Expandable struct {
	*Controller
}

// NewExpandable creates an expandable controller in month mode.
func NewExpandable(opts Options) *Expandable {
	return &Expandable{Controller: New(opts)}
}

// SetMode switches granularity and re-derives the period from the
// selection, so the new view always contains it.
func (e *Expandable) SetMode(m Mode) {
	selected := e.SelectedDate()
	e.logger.Debug("calendar mode changed", "from", e.mode.String(), "to", m.String())
	e.mode = m
	switch m {
	case ModeWeek:
		e.setPeriod(dateutil.WeekStart(selected), "mode")
	default:
		e.setPeriod(dateutil.MonthStart(selected), "mode")
	}
}

// ToggleMode flips between month and week.
func (e *Expandable) ToggleMode() {
	if e.mode == ModeWeek {
		e.SetMode(ModeMonth)
		return
	}
	e.SetMode(ModeWeek)
}
