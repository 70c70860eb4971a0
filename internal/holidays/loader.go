package holidays

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CacheMaxAge is how old the cached file may get before the app nags about
// refreshing it.
const CacheMaxAge = 6 * 30 * 24 * time.Hour

// Parse decodes holiday JSON into a Table.
func Parse(r io.Reader) (Table, error) {
	var data Data
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse holidays JSON: %w", err)
	}
	table := make(Table, len(data))
	for _, year := range data {
		table[year.Year] = year.Holiday
	}
	return table, nil
}

// LoadFromFile loads holiday data from a JSON file.
func LoadFromFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holidays file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// CachePath returns the location of the cached holidays file under the
// user cache directory.
func CachePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "calgrid", "holidays.json"), nil
}

// IsCacheValid reports whether path exists and is younger than CacheMaxAge.
func IsCacheValid(path string, now time.Time) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.ModTime().After(now.Add(-CacheMaxAge)), nil
}

// Years reports the range of years in a table.
func (t Table) Years() (YearRange, error) {
	var r YearRange
	for key := range t {
		year, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		if r.Count == 0 || year < r.MinYear {
			r.MinYear = year
		}
		if r.Count == 0 || year > r.MaxYear {
			r.MaxYear = year
		}
		r.Count++
	}
	if r.Count == 0 {
		return r, errors.New("no valid years found")
	}
	return r, nil
}
