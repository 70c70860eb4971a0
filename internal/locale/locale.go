// Package locale turns dates into calendar header text. Tables are plain
// data handed to the caller; nothing here is global or mutable.
package locale

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/lululau/calgrid/internal/calendar"
)

// Default is used when a requested locale has no table.
const Default = "ko"

// Config holds the strings for one language.
//
// MonthYearFormat and WeekTitleFormat are templates with {year}, {month}
// and {week} placeholders.
type Config struct {
	WeekDayText     []string `yaml:"week_day_text"`
	MonthText       []string `yaml:"month_text"`
	WeekOfMonthText []string `yaml:"week_of_month_text"`
	MonthYearFormat string   `yaml:"month_year_format"`
	WeekTitleFormat string   `yaml:"week_title_format"`
}

// Table maps a BCP 47 base language ("ko", "en") to its strings.
type Table map[string]Config

// DefaultTable returns a fresh copy of the built-in strings.
func DefaultTable() Table {
	return Table{
		"ko": {
			WeekDayText:     []string{"일", "월", "화", "수", "목", "금", "토"},
			MonthText:       []string{"1월", "2월", "3월", "4월", "5월", "6월", "7월", "8월", "9월", "10월", "11월", "12월"},
			WeekOfMonthText: []string{"1주차", "2주차", "3주차", "4주차", "5주차", "6주차"},
			MonthYearFormat: "{year}년 {month}",
			WeekTitleFormat: "{year}년 {month} {week}",
		},
		"en": {
			WeekDayText: []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
			MonthText: []string{"January", "February", "March", "April", "May", "June",
				"July", "August", "September", "October", "November", "December"},
			WeekOfMonthText: []string{"1st week", "2nd week", "3rd week", "4th week", "5th week", "6th week"},
			MonthYearFormat: "{month} {year}",
			WeekTitleFormat: "The {week} of {month} {year}",
		},
		"zh": {
			WeekDayText:     []string{"日", "一", "二", "三", "四", "五", "六"},
			MonthText:       []string{"1 月", "2 月", "3 月", "4 月", "5 月", "6 月", "7 月", "8 月", "9 月", "10 月", "11 月", "12 月"},
			WeekOfMonthText: []string{"第 1 周", "第 2 周", "第 3 周", "第 4 周", "第 5 周", "第 6 周"},
			MonthYearFormat: "{year} 年 {month}",
			WeekTitleFormat: "{year} 年 {month} {week}",
		},
	}
}

// Validate checks that a Config can format every date.
func (c Config) Validate() error {
	if len(c.WeekDayText) != 7 {
		return fmt.Errorf("week_day_text needs 7 entries, got %d", len(c.WeekDayText))
	}
	if len(c.MonthText) != 12 {
		return fmt.Errorf("month_text needs 12 entries, got %d", len(c.MonthText))
	}
	if c.MonthYearFormat == "" || c.WeekTitleFormat == "" {
		return fmt.Errorf("month_year_format and week_title_format are required")
	}
	return nil
}

// Lookup matches key ("ko-KR", "en_US", "zh-Hans") against the table and
// falls back to Default. The matched tag is returned with the Config.
func (t Table) Lookup(key string) (Config, language.Tag) {
	names := make([]string, 0, len(t))
	for name := range t {
		if name != Default {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	if _, ok := t[Default]; ok {
		names = slices.Insert(names, 0, Default)
	}
	if len(names) == 0 {
		return DefaultTable()[Default], language.Korean
	}
	tags := make([]language.Tag, len(names))
	for i, name := range names {
		tags[i] = language.Make(name)
	}

	want, err := language.Parse(strings.ReplaceAll(key, "_", "-"))
	if err != nil {
		return t[names[0]], tags[0]
	}
	_, idx, conf := language.NewMatcher(tags).Match(want)
	if conf == language.No {
		return t[names[0]], tags[0]
	}
	return t[names[idx]], tags[idx]
}

// LoadTable reads YAML tables from r and merges them over DefaultTable.
func LoadTable(r io.Reader) (Table, error) {
	var custom Table
	if err := yaml.NewDecoder(r).Decode(&custom); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse locale table: %w", err)
	}
	return Merge(custom)
}

// Merge lays custom over DefaultTable. Every custom entry must pass
// Validate.
func Merge(custom Table) (Table, error) {
	table := DefaultTable()
	for name, cfg := range custom {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("locale %q: %w", name, err)
		}
		table[name] = cfg
	}
	return table, nil
}

// MonthYearText renders the header of a month view.
func (c Config) MonthYearText(date time.Time) string {
	return c.expand(c.MonthYearFormat, date, "")
}

// WeekOfMonthLabel is the label of the week row holding date.
func (c Config) WeekOfMonthLabel(date time.Time) (string, error) {
	idx, err := calendar.WeekIndexWithin(date, len(c.WeekOfMonthText))
	if err != nil {
		return "", err
	}
	return c.WeekOfMonthText[idx], nil
}

// WeekTitle renders the header of a week view.
func (c Config) WeekTitle(date time.Time) (string, error) {
	week, err := c.WeekOfMonthLabel(date)
	if err != nil {
		return "", err
	}
	return c.expand(c.WeekTitleFormat, date, week), nil
}

// WeekDayNames returns the column headings, Sunday first.
func (c Config) WeekDayNames() []string {
	return c.WeekDayText
}

func (c Config) expand(format string, date time.Time, week string) string {
	return strings.NewReplacer(
		"{year}", fmt.Sprintf("%d", date.Year()),
		"{month}", c.MonthText[date.Month()-1],
		"{week}", week,
	).Replace(format)
}
