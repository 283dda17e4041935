// Package sheet turns raw spreadsheet bytes into typed, projected frames.
//
// Files arrive in one of two physical layouts: the ordinary format carries a
// four-row schema descriptor (description / enable flag / type tag / column
// name) ahead of the data, and the pivot format used by the Enum table lays
// one category per physical column. Both decode into a Frame, the unit every
// table parser downstream consumes.
package sheet

// Frame is a projected table: an ordered column list and one Row per data
// row. Cell values are int64, float64, string, or nil for null.
type Frame struct {
	Columns []string
	Rows    []Row
}

// Row maps a declared column name to its typed cell value.
type Row map[string]any

// HasColumn reports whether the frame carries the named column.
func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Empty reports whether the frame has no data rows.
func (f *Frame) Empty() bool {
	return len(f.Rows) == 0
}

// IsNull reports whether the row's cell for the column is null or absent.
func (r Row) IsNull(col string) bool {
	v, ok := r[col]
	return !ok || v == nil
}

// Int returns the cell as int64. The second return is false for null cells
// and for cells that are not integral.
func (r Row) Int(col string) (int64, bool) {
	switch v := r[col].(type) {
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

// Float returns the cell as float64, accepting integer cells as well.
func (r Row) Float(col string) (float64, bool) {
	switch v := r[col].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// String returns the cell as a string. Null and non-string cells return
// ("", false).
func (r Row) String(col string) (string, bool) {
	if v, ok := r[col].(string); ok {
		return v, true
	}
	return "", false
}
