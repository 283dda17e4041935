package sheet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrStructural marks files whose physical layout cannot be interpreted:
// too few rows, no enabled columns, or no usable pivot category.
var ErrStructural = errors.New("structural error")

// Descriptor row positions within the grid. The four metadata rows always
// occupy the first four physical rows; data begins at the fifth.
const (
	rowDescription = 0
	rowEnableFlag  = 1
	rowTypeTag     = 2
	rowColumnName  = 3
	rowDataStart   = 4
)

// vatColumn is rounded to the nearest integer before coercion instead of
// truncated: source VAT values carry rounding artifacts from currency fields.
const vatColumn = "VAT"

// releaseColumn gates data rows: values other than 0 or 1 are dropped
// silently. This is a data-quality filter, not a validation error.
const releaseColumn = "Release"

// columnType is the declared primitive type of a projected column.
type columnType int

const (
	typeString columnType = iota
	typeInt
	typeFloat
	typeBool
)

// Extract reads the four-row schema descriptor and projects the grid onto
// the enabled columns, coercing every cell to its declared type. Coercion
// never fails a cell; unparseable values become null.
func Extract(grid Grid) (*Frame, error) {
	if len(grid) < rowDataStart+1 {
		return nil, fmt.Errorf("%w: need at least %d rows (4 metadata + 1 data), got %d",
			ErrStructural, rowDataStart+1, len(grid))
	}

	enable := grid[rowEnableFlag]
	tags := grid[rowTypeTag]
	names := grid[rowColumnName]

	// Selected columns are those whose enable flag is 1, numeric or string.
	var selected []int
	for i := range widestRow(grid) {
		if cell(enable, i) == "1" {
			selected = append(selected, i)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no columns enabled in the descriptor", ErrStructural)
	}

	frame := &Frame{Columns: make([]string, len(selected))}
	types := make([]columnType, len(selected))
	for i, idx := range selected {
		frame.Columns[i] = cell(names, idx)
		types[i] = parseTypeTag(cell(tags, idx))
	}

	for _, raw := range grid[rowDataStart:] {
		row := make(Row, len(selected))
		empty := true
		for i, idx := range selected {
			v := coerceCell(cell(raw, idx), types[i], frame.Columns[i])
			row[frame.Columns[i]] = v
			if v != nil {
				empty = false
			}
		}
		if empty {
			continue
		}
		frame.Rows = append(frame.Rows, row)
	}

	if frame.HasColumn(releaseColumn) {
		frame.Rows = filterReleased(frame.Rows)
	}

	return frame, nil
}

// parseTypeTag maps a row-3 tag to a column type by case-insensitive
// substring, matching the tags INT, FLOAT, DECIMAL, BOOL, VARCHAR, TEXT and
// STRING. Unknown tags fall back to string.
func parseTypeTag(tag string) columnType {
	t := strings.ToUpper(strings.TrimSpace(tag))
	switch {
	case strings.Contains(t, "BOOL"):
		return typeBool
	case strings.Contains(t, "INT"):
		return typeInt
	case strings.Contains(t, "FLOAT"), strings.Contains(t, "DECIMAL"):
		return typeFloat
	case strings.Contains(t, "VARCHAR"), strings.Contains(t, "TEXT"), strings.Contains(t, "STRING"):
		return typeString
	default:
		return typeString
	}
}

// coerceCell converts one raw cell to its declared type. Parse failures give
// null, never an error: validation happens later with full context.
func coerceCell(raw string, ct columnType, column string) any {
	if raw == "" {
		return nil
	}

	switch ct {
	case typeInt:
		if column == vatColumn {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil
			}
			return int64(math.Round(f))
		}
		return parseIntCell(raw)

	case typeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return f

	case typeBool:
		// Declared booleans arrive as 0/1 markers and stay integers.
		return parseIntCell(raw)

	default:
		if strings.EqualFold(raw, "nan") {
			return nil
		}
		return raw
	}
}

// parseIntCell parses an integer cell, truncating decimal representations
// like "3.0" or "3.7" toward zero.
func parseIntCell(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(math.Trunc(f))
	}
	return nil
}

// filterReleased keeps rows whose Release cell is exactly 0 or 1.
func filterReleased(rows []Row) []Row {
	out := rows[:0]
	for _, row := range rows {
		if n, ok := row.Int(releaseColumn); ok && (n == 0 || n == 1) {
			out = append(out, row)
		}
	}
	return out
}

// widestRow returns the number of physical columns in the widest grid row,
// so ragged metadata rows still project correctly.
func widestRow(grid Grid) int {
	max := 0
	for _, row := range grid {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}
