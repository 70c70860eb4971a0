package state

import (
	"testing"
	"time"

	"github.com/lululau/calgrid/internal/calendar"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func ptr(t time.Time) *time.Time { return &t }

func TestNewUncontrolledDefaultsToToday(t *testing.T) {
	now := time.Date(2024, 2, 14, 16, 30, 0, 0, time.Local)
	c := New(Options{Now: func() time.Time { return now }})
	if c.IsControlled() {
		t.Fatalf("expected uncontrolled")
	}
	if !c.SelectedDate().Equal(date(2024, 2, 14)) {
		t.Fatalf("SelectedDate=%v", c.SelectedDate())
	}
	if !c.CurrentPeriod().Equal(date(2024, 2, 1)) {
		t.Fatalf("CurrentPeriod=%v", c.CurrentPeriod())
	}
	if _, ok := c.Selection().(Uncontrolled); !ok {
		t.Fatalf("Selection=%T", c.Selection())
	}
}

func TestNewPrefersControlledDate(t *testing.T) {
	c := New(Options{
		DefaultDate:    ptr(date(2020, 1, 1)),
		ControlledDate: ptr(time.Date(2024, 7, 4, 9, 0, 0, 0, time.Local)),
	})
	s := c.Snapshot()
	if !s.Controlled || !s.SelectedDate.Equal(date(2024, 7, 4)) || !s.CurrentPeriod.Equal(date(2024, 7, 1)) {
		t.Fatalf("unexpected snapshot %+v", s)
	}
}

func TestSelectDateUncontrolled(t *testing.T) {
	c := New(Options{DefaultDate: ptr(date(2024, 2, 14))})

	c.SelectDate(time.Date(2024, 2, 20, 13, 0, 0, 0, time.Local))
	if !c.SelectedDate().Equal(date(2024, 2, 20)) {
		t.Fatalf("SelectedDate=%v", c.SelectedDate())
	}
	if !c.CurrentPeriod().Equal(date(2024, 2, 1)) {
		t.Fatalf("selecting inside the month must keep the period, got %v", c.CurrentPeriod())
	}

	c.SelectDate(date(2024, 3, 2))
	if !c.CurrentPeriod().Equal(date(2024, 3, 1)) {
		t.Fatalf("selecting outside the month must move the period, got %v", c.CurrentPeriod())
	}
}

func TestSelectDateControlled(t *testing.T) {
	var notified []time.Time
	c := New(Options{
		ControlledDate: ptr(date(2024, 2, 14)),
		OnDateChange:   func(d time.Time) { notified = append(notified, d) },
	})

	c.SelectDate(time.Date(2024, 3, 5, 8, 0, 0, 0, time.Local))
	if !c.SelectedDate().Equal(date(2024, 2, 14)) {
		t.Fatalf("controlled selection must not change on its own, got %v", c.SelectedDate())
	}
	if !c.CurrentPeriod().Equal(date(2024, 3, 1)) {
		t.Fatalf("period should follow the tapped date, got %v", c.CurrentPeriod())
	}
	if len(notified) != 1 || !notified[0].Equal(date(2024, 3, 5)) {
		t.Fatalf("expected one normalized notification, got %v", notified)
	}

	// The host accepts the change.
	if _, changed := c.Reconcile(notified[0]); changed {
		t.Fatalf("accepted value is already displayed; no period change expected")
	}
	if !c.SelectedDate().Equal(date(2024, 3, 5)) {
		t.Fatalf("SelectedDate=%v", c.SelectedDate())
	}
}

func TestUncontrolledDoesNotNotify(t *testing.T) {
	called := false
	c := New(Options{OnDateChange: func(time.Time) { called = true }})
	c.SelectDate(date(2024, 1, 1))
	if called {
		t.Fatalf("OnDateChange fires only for controlled selections")
	}
	if _, changed := c.Reconcile(date(2030, 1, 1)); changed {
		t.Fatalf("Reconcile must be a no-op when uncontrolled")
	}
	if !c.SelectedDate().Equal(date(2024, 1, 1)) {
		t.Fatalf("SelectedDate=%v", c.SelectedDate())
	}
}

func TestNavigationKeepsSelection(t *testing.T) {
	c := New(Options{DefaultDate: ptr(date(2024, 1, 31))})
	c.NextPeriod()
	if !c.CurrentPeriod().Equal(date(2024, 2, 1)) {
		t.Fatalf("NextPeriod=%v", c.CurrentPeriod())
	}
	c.PrevPeriod()
	c.PrevPeriod()
	if !c.CurrentPeriod().Equal(date(2023, 12, 1)) {
		t.Fatalf("PrevPeriod=%v", c.CurrentPeriod())
	}
	if !c.SelectedDate().Equal(date(2024, 1, 31)) {
		t.Fatalf("navigation changed the selection: %v", c.SelectedDate())
	}
}

func TestReconcile(t *testing.T) {
	c := New(Options{ControlledDate: ptr(date(2024, 2, 14))})

	if _, changed := c.Reconcile(date(2024, 2, 14)); changed {
		t.Fatalf("same value must not emit")
	}
	if _, changed := c.Reconcile(date(2024, 2, 20)); changed {
		t.Fatalf("value inside the period must not emit")
	}

	ev, changed := c.Reconcile(time.Date(2024, 9, 9, 12, 0, 0, 0, time.Local))
	if !changed {
		t.Fatalf("expected PeriodChanged")
	}
	if !ev.From.Equal(date(2024, 2, 1)) || !ev.To.Equal(date(2024, 9, 1)) {
		t.Fatalf("unexpected event %+v", ev)
	}

	// Paging away and then feeding the unchanged value back keeps the page.
	c.NextPeriod()
	if _, changed := c.Reconcile(date(2024, 9, 9)); changed {
		t.Fatalf("unchanged value must not snap the period back")
	}
	if !c.CurrentPeriod().Equal(date(2024, 10, 1)) {
		t.Fatalf("CurrentPeriod=%v", c.CurrentPeriod())
	}
}

func TestReconcileBeforeGrid(t *testing.T) {
	svc := calendar.NewService()
	c := New(Options{ControlledDate: ptr(date(2024, 2, 14))})
	c.Reconcile(date(2025, 6, 15))
	grid, err := c.Grid(svc)
	if err != nil {
		t.Fatal(err)
	}
	day, ok := grid.Selected()
	if !ok || !day.Date.Equal(date(2025, 6, 15)) || grid.Key != "2025-06" {
		t.Fatalf("grid %s selected=%v ok=%v", grid.Key, day.Date, ok)
	}
}

func TestExpandableWeekNavigation(t *testing.T) {
	e := NewExpandable(Options{DefaultDate: ptr(date(2024, 2, 14))})
	if e.Mode() != ModeMonth {
		t.Fatalf("expandable starts in month mode")
	}

	e.SetMode(ModeWeek)
	if !e.CurrentPeriod().Equal(date(2024, 2, 11)) {
		t.Fatalf("week mode period=%v want week start 2024-02-11", e.CurrentPeriod())
	}

	e.NextPeriod()
	if !e.CurrentPeriod().Equal(date(2024, 2, 18)) {
		t.Fatalf("NextPeriod should advance exactly 7 days, got %v", e.CurrentPeriod())
	}
	if !e.SelectedDate().Equal(date(2024, 2, 14)) {
		t.Fatalf("week navigation changed selection: %v", e.SelectedDate())
	}

	e.PrevPeriod()
	e.PrevPeriod()
	if !e.CurrentPeriod().Equal(date(2024, 2, 4)) {
		t.Fatalf("PrevPeriod=%v", e.CurrentPeriod())
	}

	e.SetMode(ModeMonth)
	if !e.CurrentPeriod().Equal(date(2024, 2, 1)) {
		t.Fatalf("month mode period=%v", e.CurrentPeriod())
	}
}

func TestExpandableWeekSelection(t *testing.T) {
	e := NewExpandable(Options{DefaultDate: ptr(date(2024, 2, 28))})
	e.SetMode(ModeWeek)

	// Mar 1 is in the same week row: the period stays.
	e.SelectDate(date(2024, 3, 1))
	if !e.CurrentPeriod().Equal(date(2024, 2, 25)) {
		t.Fatalf("CurrentPeriod=%v", e.CurrentPeriod())
	}
	e.SelectDate(date(2024, 3, 4))
	if !e.CurrentPeriod().Equal(date(2024, 3, 3)) {
		t.Fatalf("CurrentPeriod=%v", e.CurrentPeriod())
	}

	grid, err := e.Grid(calendar.NewService())
	if err != nil {
		t.Fatal(err)
	}
	if len(grid.Days) != 7 || !grid.Days[0].Date.Equal(date(2024, 3, 3)) {
		t.Fatalf("unexpected week grid %s", grid.Key)
	}
	pages, err := e.Pages(calendar.NewService())
	if err != nil {
		t.Fatal(err)
	}
	if pages[1].Key != grid.Key {
		t.Fatalf("center page %s want %s", pages[1].Key, grid.Key)
	}
}

func TestModeSwitchKeepsSelectionVisible(t *testing.T) {
	e := NewExpandable(Options{DefaultDate: ptr(date(2024, 5, 31))})
	for i := 0; i < 5; i++ {
		e.NextPeriod()
	}
	e.ToggleMode()
	if e.Mode() != ModeWeek || !e.CurrentPeriod().Equal(date(2024, 5, 26)) {
		t.Fatalf("mode=%v period=%v", e.Mode(), e.CurrentPeriod())
	}
	e.NextPeriod()
	e.ToggleMode()
	if e.Mode() != ModeMonth || !e.CurrentPeriod().Equal(date(2024, 5, 1)) {
		t.Fatalf("mode=%v period=%v", e.Mode(), e.CurrentPeriod())
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeMonth, "month": ModeMonth, "week": ModeWeek} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q)=%v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("day"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestShowDateKeepsSelection(t *testing.T) {
	e := NewExpandable(Options{DefaultDate: ptr(date(2024, 2, 14))})
	e.ShowDate(date(2031, 7, 19))
	if !e.CurrentPeriod().Equal(date(2031, 7, 1)) {
		t.Fatalf("CurrentPeriod=%v", e.CurrentPeriod())
	}
	e.SetMode(ModeWeek)
	if !e.CurrentPeriod().Equal(date(2024, 2, 11)) {
		t.Fatalf("mode switch must return to the selection, got %v", e.CurrentPeriod())
	}
	e.ShowDate(date(2024, 3, 6))
	if !e.CurrentPeriod().Equal(date(2024, 3, 3)) || !e.SelectedDate().Equal(date(2024, 2, 14)) {
		t.Fatalf("period=%v selected=%v", e.CurrentPeriod(), e.SelectedDate())
	}
}
