package salesession

import (
	"strconv"
	"strings"
	"time"
)

const sortKeyLayout = "20060102150405"

// ParseDateTime turns a "DD.MM.YYYY" / "HH:MM[:SS]" pair into an instant. The second
// return value is false for missing or malformed input; it never panics.
func ParseDateTime(date string, clock string) (time.Time, bool) {
	day, month, year, ok := parseDate(date)
	if !ok {
		return time.Time{}, false
	}
	hour, minute, second, ok := parseClock(clock)
	if !ok {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// SortKey returns a key whose lexicographic order matches chronological order. Input
// that cannot be parsed falls back to the raw concatenation.
func SortKey(date string, clock string) string {
	if t, ok := ParseDateTime(date, clock); ok {
		return t.Format(sortKeyLayout)
	}
	return strings.TrimSpace(date) + strings.TrimSpace(clock)
}

// ParseDate accepts "DD.MM.YYYY" (store format) or "YYYY-MM-DD" (query format).
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "-") {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return ParseDateTime(raw, "00:00")
}

func parseDate(raw string) (int, int, int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	day, ok := atoiRange(parts[0], 1, 31)
	if !ok {
		return 0, 0, 0, false
	}
	month, ok := atoiRange(parts[1], 1, 12)
	if !ok {
		return 0, 0, 0, false
	}
	if len(strings.TrimSpace(parts[2])) != 4 {
		return 0, 0, 0, false
	}
	year, ok := atoiRange(parts[2], 1, 9999)
	if !ok {
		return 0, 0, 0, false
	}
	return day, month, year, true
}

func parseClock(raw string) (int, int, int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, false
	}
	hour, ok := atoiRange(parts[0], 0, 23)
	if !ok {
		return 0, 0, 0, false
	}
	minute, ok := atoiRange(parts[1], 0, 59)
	if !ok {
		return 0, 0, 0, false
	}
	second := 0
	if len(parts) == 3 {
		second, ok = atoiRange(parts[2], 0, 59)
		if !ok {
			return 0, 0, 0, false
		}
	}
	return hour, minute, second, true
}

func atoiRange(raw string, minVal int, maxVal int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 4 {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < minVal || val > maxVal {
		return 0, false
	}
	return val, true
}
