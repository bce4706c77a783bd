package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Granularity is the bucketing unit used by sales history and forecasting.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	switch g {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// Key returns the canonical, lexicographically sortable bucket key for t:
// daily "2006-01-02", weekly "2006-W02" (ISO-8601 week), monthly "2006-01".
// Unknown granularities fall back to the daily format.
func Key(t time.Time, g Granularity) string {
	switch g {
	case Weekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Monthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// Add advances t by steps periods of the given granularity.
func Add(t time.Time, g Granularity, steps int) time.Time {
	switch g {
	case Weekly:
		return t.AddDate(0, 0, 7*steps)
	case Monthly:
		return t.AddDate(0, steps, 0)
	default:
		return t.AddDate(0, 0, steps)
	}
}

// KeyRange resolves a period key back to its half-open [start, end) window.
// Accepted shapes are "2006-W02" (ISO week), "2006-01" (month) and
// "2006-01-02" (day); anything else is parsed as a plain date and expanded to
// a one-day window. Malformed keys return an error.
func KeyRange(key string) (time.Time, time.Time, error) {
	switch {
	case strings.Contains(key, "W"):
		return weekRange(key)
	case len(key) == 7 && key[4] == '-':
		return monthRange(key)
	case len(key) == 10 && key[4] == '-' && key[7] == '-':
		start, err := time.ParseInLocation("2006-01-02", key, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid daily period %q: %w", key, err)
		}
		return start, start.AddDate(0, 0, 1), nil
	default:
		for _, layout := range []string{"2006-01-02", time.RFC3339} {
			if parsed, err := time.ParseInLocation(layout, key, time.UTC); err == nil {
				start := parsed.Truncate(24 * time.Hour)
				return start, start.AddDate(0, 0, 1), nil
			}
		}
		return time.Time{}, time.Time{}, fmt.Errorf("unrecognized period format %q", key)
	}
}

// weekRange resolves "YYYY-Www" to the Monday..Monday window of that ISO
// week. January 4 is always inside ISO week 1, so the week's Monday is found
// by stepping back from it and adding whole weeks. Week 53 of a 52-week year
// resolves into the first days of the next ISO year.
func weekRange(key string) (time.Time, time.Time, error) {
	parts := strings.SplitN(key, "-W", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid weekly period %q", key)
	}

	year, yerr := strconv.Atoi(parts[0])
	week, werr := strconv.Atoi(parts[1])
	if yerr != nil || werr != nil || week < 1 || week > 53 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid weekly period %q", key)
	}

	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday counts as day 7 in ISO weeks
	}
	monday := jan4.AddDate(0, 0, 1-weekday)

	start := monday.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 7), nil
}

// monthRange resolves "YYYY-MM" to the first-of-month..first-of-next-month window.
func monthRange(key string) (time.Time, time.Time, error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid monthly period %q", key)
	}

	year, yerr := strconv.Atoi(parts[0])
	month, merr := strconv.Atoi(parts[1])
	if yerr != nil || merr != nil || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid monthly period %q", key)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}
