package sheet

import (
	"strconv"
	"strings"
	"time"
)

// serialEpoch is the Excel date origin. Serial day n maps to epoch + n days;
// the 1899-12-30 base absorbs Excel's fictitious 1900-02-29.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DecodeDate interprets a cell as a calendar date. Numeric cells are Excel
// serial day offsets; strings must be YYYY-MM-DD with an optional time part.
// Anything else returns false, never an error.
func DecodeDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case int64:
		return decodeSerial(float64(val))
	case float64:
		return decodeSerial(val)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return decodeSerial(f)
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func decodeSerial(days float64) (time.Time, bool) {
	if days <= 0 {
		return time.Time{}, false
	}
	whole := int(days)
	frac := days - float64(whole)
	t := serialEpoch.AddDate(0, 0, whole)
	if frac > 0 {
		t = t.Add(time.Duration(frac * float64(24*time.Hour)))
	}
	return t, true
}

// FormatDate renders a decoded date in the YYYY-MM-DD form the target tables
// store.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
