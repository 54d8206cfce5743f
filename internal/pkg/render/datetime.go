package render

import (
	"strings"
	"time"
)

const (
	cellDateLayout     = "1/2/06"
	cellDateTimeLayout = "1/2 3:04pm"
	createdLayout      = "1/2/06 3:04pm"
)

// zone-naive layouts; time.Parse accepts fractional seconds after the seconds field
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// IsDateLike is the loose "looks like an ISO timestamp" check applied to
// table cells before any parsing is attempted.
func IsDateLike(text string) bool {
	return strings.Contains(text, "T") && strings.Contains(text, "-")
}

// NormalizeCellDate reformats an ISO-like cell value. The text is first read
// as a UTC instant, then as a local date-time in loc. Midnight values render
// as M/d/yy, everything else as M/d h:mma. ok is false when text is left as is.
func NormalizeCellDate(text string, loc *time.Location) (string, bool) {
	if !IsDateLike(text) {
		return text, false
	}
	if loc == nil {
		loc = time.Local
	}

	t, err := time.Parse(time.RFC3339Nano, text+"Z")
	if err != nil {
		var ok bool
		t, ok = parseLocal(text, loc)
		if !ok {
			return text, false
		}
	}

	if isMidnight(t) {
		return t.Format(cellDateLayout), true
	}
	return t.Format(cellDateTimeLayout), true
}

// FormatCreated renders a record's createDateTime for display in loc. Empty or
// unparsable values are returned verbatim.
func FormatCreated(raw string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, ok := parseTimestamp(strings.TrimSpace(raw), loc)
	if !ok {
		return raw
	}
	return t.In(loc).Format(createdLayout)
}

// parseTimestamp reads an instant with an explicit offset, falling back to a
// zone-naive date-time interpreted in loc
func parseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	return parseLocal(raw, loc)
}

func parseLocal(raw string, loc *time.Location) (time.Time, bool) {
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}
