package holidays

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is a single day in the holiday JSON data.
type Entry struct {
	Holiday bool   `json:"holiday"`
	Name    string `json:"name"`
	Wage    int    `json:"wage"`
	Date    string `json:"date"`
	// Optional fields
	After  *bool  `json:"after,omitempty"`
	Target string `json:"target,omitempty"`
	Rest   *int   `json:"rest,omitempty"`
}

// UnmarshalJSON accepts a holiday field that is either a boolean or a
// string; a non-empty string counts as a holiday.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type alias Entry
	aux := &struct {
		Holiday any `json:"holiday"`
		*alias
	}{
		alias: (*alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch v := aux.Holiday.(type) {
	case bool:
		e.Holiday = v
	case string:
		e.Holiday = v != ""
	default:
		e.Holiday = false
	}
	return nil
}

// Data is the on-disk layout: one element per year.
type Data []struct {
	Year    string            `json:"year"`
	Holiday map[string]*Entry `json:"holiday"`
}

// Table maps a year ("2024") to its entries keyed by "MM-DD".
type Table map[string]map[string]*Entry

// Info is what a calendar cell carries about a holiday.
type Info struct {
	// IsHoliday is false for a working day moved onto a weekend.
	IsHoliday bool
	Name      string
}

// Lookup returns holiday information for day, or nil.
func (t Table) Lookup(day time.Time) *Info {
	if t == nil {
		return nil
	}
	yearData, ok := t[fmt.Sprintf("%d", day.Year())]
	if !ok {
		return nil
	}
	entry, ok := yearData[fmt.Sprintf("%02d-%02d", day.Month(), day.Day())]
	if !ok || entry == nil {
		return nil
	}
	return &Info{
		IsHoliday: entry.Holiday,
		Name:      entry.Name,
	}
}

// YearRange summarises which years a data set covers.
type YearRange struct {
	MinYear int
	MaxYear int
	Count   int
}
