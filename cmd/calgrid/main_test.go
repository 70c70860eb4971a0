package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/lululau/calgrid/internal/calendar"
	"github.com/lululau/calgrid/internal/config"
	"github.com/lululau/calgrid/internal/locale"
)

func TestParseRequest(t *testing.T) {
	now := time.Date(2024, 2, 14, 10, 0, 0, 0, time.Local)
	tests := []struct {
		name     string
		showYear bool
		args     []string
		want     calendar.Request
		wantErr  bool
	}{
		{name: "no args", want: calendar.Request{Year: 2024, Month: 2, Day: 14, Mode: calendar.ModeMonth}},
		{name: "month", args: []string{"9"}, want: calendar.Request{Year: 2024, Month: 9, Mode: calendar.ModeMonth}},
		{name: "year", args: []string{"1983"}, want: calendar.Request{Year: 1983, Month: 2, Mode: calendar.ModeYear}},
		{name: "year month", args: []string{"2012", "12"}, want: calendar.Request{Year: 2012, Month: 12, Mode: calendar.ModeMonth}},
		{name: "year flag small", showYear: true, args: []string{"9"}, want: calendar.Request{Year: 9, Month: 2, Mode: calendar.ModeYear}},
		{name: "current year", showYear: true, want: calendar.Request{Year: 2024, Month: 2, Day: 14, Mode: calendar.ModeYear}},
		{name: "bad month", args: []string{"2012", "13"}, wantErr: true},
		{name: "not a number", args: []string{"abc"}, wantErr: true},
		{name: "year flag with two args", showYear: true, args: []string{"2012", "1"}, wantErr: true},
		{name: "too many", args: []string{"1", "2", "3"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRequest(tt.showYear, tt.args, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRequest: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v want %+v", got, tt.want)
			}
		})
	}
}

func TestReloadAppliesLiveKeys(t *testing.T) {
	logLevel.Set(slog.LevelInfo)
	t.Cleanup(func() { logLevel.Set(slog.LevelInfo) })

	next := config.DefaultConfig()
	next.Locale = "en"
	next.LogLevel = "debug"
	next.ShowLunar = true

	msg, err := reload(next, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := logLevel.Level(); got != slog.LevelDebug {
		t.Fatalf("log level=%v want DEBUG", got)
	}
	if msg.Renderer.Locale.MonthYearText(time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)) != "February 2024" {
		t.Fatalf("renderer locale not switched")
	}
	grid, err := msg.Service.MonthGrid(2024, time.February, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !grid.Days[0].HasLunarData() {
		t.Fatalf("show_lunar not applied to the new service")
	}
}

func TestReloadKeepsLevelOnBadConfig(t *testing.T) {
	logLevel.Set(slog.LevelWarn)
	t.Cleanup(func() { logLevel.Set(slog.LevelInfo) })

	next := config.DefaultConfig()
	next.LogLevel = "debug"
	next.Locales = locale.Table{"fr": {WeekDayText: []string{"di"}}}
	if _, err := reload(next, nil); err == nil {
		t.Fatalf("expected error for a broken locale table")
	}
	if got := logLevel.Level(); got != slog.LevelWarn {
		t.Fatalf("log level changed to %v on a rejected reload", got)
	}
}
