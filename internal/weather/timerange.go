package weather

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LastNDays returns the UTC window covering the last days days, ending at the
// start of the current hour.
func LastNDays(now time.Time, days int) (start, end time.Time) {
	end = now.UTC().Truncate(time.Hour)
	start = end.AddDate(0, 0, -days)
	return start, end
}

// DateParams formats a window as the YYYY-MM-DD pair the upstream API expects.
func DateParams(start, end time.Time) (string, string) {
	return start.UTC().Format(time.DateOnly), end.UTC().Format(time.DateOnly)
}

var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseISO parses an ISO-8601 datetime. A trailing "Z" or numeric offset is
// honoured and the result converted to UTC; values without a zone are taken
// to already be UTC.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00", "2006-01-02 15:04:05Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO datetime %q", s)
}

// FormatCoord renders a coordinate the way it appears in filenames, always
// with a fractional part: 8 -> "8.0", 47.37 -> "47.37".
func FormatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
