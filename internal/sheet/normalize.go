package sheet

import (
	"math"
	"strconv"
	"strings"
)

// missingTokens are the string forms that always mean "no value", compared
// case-insensitively after stripping optional angle brackets. The numeric
// sentinel -1 is handled separately so it also catches typed cells.
var missingTokens = map[string]struct{}{
	"-1":   {},
	"nan":  {},
	"none": {},
	"null": {},
	"na":   {},
	"n/a":  {},
	"nat":  {},
}

// Normalize replaces every missing-value sentinel with an explicit null and
// trims surviving string cells. Columns listed in intCols and floatCols are
// re-coerced to their numeric type with parse-failure-means-null semantics.
// The same normalization runs ahead of every table parser; parsers never
// reimplement null handling.
func Normalize(f *Frame, intCols, floatCols []string) *Frame {
	isInt := toSet(intCols)
	isFloat := toSet(floatCols)

	for _, row := range f.Rows {
		for _, col := range f.Columns {
			v := normalizeCell(row[col])

			if v != nil {
				if _, ok := isInt[col]; ok {
					v = coerceNumeric(v, false)
				} else if _, ok := isFloat[col]; ok {
					v = coerceNumeric(v, true)
				}
			}

			row[col] = v
		}
	}

	return f
}

// normalizeCell maps sentinel values to nil and trims strings.
func normalizeCell(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case int64:
		if val == -1 {
			return nil
		}
	case float64:
		if val == -1 {
			return nil
		}
	case string:
		s := strings.TrimSpace(val)
		if s == "" || isMissingToken(s) {
			return nil
		}
		return s
	}
	return v
}

func isMissingToken(s string) bool {
	s = strings.ToLower(s)
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") && len(s) > 2 {
		s = s[1 : len(s)-1]
	}
	_, ok := missingTokens[s]
	return ok
}

// coerceNumeric converts a surviving cell to int64 or float64. Values that
// do not parse become null rather than raising: type violations are reported
// later by validation, not here.
func coerceNumeric(v any, wantFloat bool) any {
	switch val := v.(type) {
	case int64:
		if wantFloat {
			return float64(val)
		}
		return val
	case float64:
		if wantFloat {
			return val
		}
		return int64(math.Trunc(val))
	case string:
		if wantFloat {
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil
			}
			return f
		}
		return parseIntCell(val)
	}
	return nil
}

func toSet(cols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		set[c] = struct{}{}
	}
	return set
}
