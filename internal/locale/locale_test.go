package locale

import (
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/lululau/calgrid/internal/calendar"
)

func TestLookup(t *testing.T) {
	table := DefaultTable()
	tests := []struct {
		key  string
		want language.Tag
	}{
		{"ko", language.Korean},
		{"ko-KR", language.Korean},
		{"en_US", language.English},
		{"zh-Hans", language.Chinese},
		{"fr", language.Korean},
		{"de-DE", language.Korean},
		{"ja", language.Korean},
		{"not a tag!", language.Korean},
	}
	for _, tt := range tests {
		_, tag := table.Lookup(tt.key)
		if base, _ := tag.Base(); base.String() != mustBase(tt.want) {
			t.Fatalf("Lookup(%q)=%v want %v", tt.key, tag, tt.want)
		}
	}
}

func mustBase(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}

func TestMonthYearText(t *testing.T) {
	table := DefaultTable()
	d := time.Date(2024, 2, 14, 0, 0, 0, 0, time.Local)
	if got := table["ko"].MonthYearText(d); got != "2024년 2월" {
		t.Fatalf("ko MonthYearText=%q", got)
	}
	if got := table["en"].MonthYearText(d); got != "February 2024" {
		t.Fatalf("en MonthYearText=%q", got)
	}
}

func TestWeekTitle(t *testing.T) {
	table := DefaultTable()
	// June 2024 starts on a Saturday, so the 8th is in the second row.
	d := time.Date(2024, 6, 8, 0, 0, 0, 0, time.Local)
	got, err := table["ko"].WeekTitle(d)
	if err != nil || got != "2024년 6월 2주차" {
		t.Fatalf("ko WeekTitle=%q, %v", got, err)
	}
	got, err = table["en"].WeekTitle(d)
	if err != nil || got != "The 2nd week of June 2024" {
		t.Fatalf("en WeekTitle=%q, %v", got, err)
	}
}

func TestWeekOfMonthLabelOutOfRange(t *testing.T) {
	cfg := DefaultTable()["en"]
	cfg.WeekOfMonthText = cfg.WeekOfMonthText[:5]
	_, err := cfg.WeekOfMonthLabel(time.Date(2024, 6, 30, 0, 0, 0, 0, time.Local))
	if !errors.Is(err, calendar.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestLoadTable(t *testing.T) {
	src := `
ja:
  week_day_text: [日, 月, 火, 水, 木, 金, 土]
  month_text: [1月, 2月, 3月, 4月, 5月, 6月, 7月, 8月, 9月, 10月, 11月, 12月]
  week_of_month_text: [第1週, 第2週, 第3週, 第4週, 第5週, 第6週]
  month_year_format: "{year}年{month}"
  week_title_format: "{year}年{month} {week}"
`
	table, err := LoadTable(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if _, ok := table["ko"]; !ok {
		t.Fatalf("defaults should be kept")
	}
	cfg, _ := table.Lookup("ja-JP")
	if got := cfg.MonthYearText(time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)); got != "2024年3月" {
		t.Fatalf("ja MonthYearText=%q", got)
	}
	if names := cfg.WeekDayNames(); len(names) != 7 || names[0] != "日" {
		t.Fatalf("WeekDayNames=%v", names)
	}

	if _, err := LoadTable(strings.NewReader("xx:\n  week_day_text: [a]\n")); err == nil {
		t.Fatalf("expected validation error")
	}
	if table, err := LoadTable(strings.NewReader("")); err != nil || len(table) != len(DefaultTable()) {
		t.Fatalf("empty input should yield defaults: %v", err)
	}
}
