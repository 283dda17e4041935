package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/archbyuk/dermacare-engine-sub000/internal/sheet"
)

// Parser applies one binding to a projected frame: validate, clean, insert.
// Validation never mutates the frame or storage; cleaning returns a frame
// ready for insertion; insertion runs inside the caller's transaction.
type Parser struct {
	binding Binding
}

// NewParser wraps a binding in its parser.
func NewParser(b Binding) *Parser {
	return &Parser{binding: b}
}

// Table returns the target table name.
func (p *Parser) Table() string {
	return p.binding.Table
}

// Validate checks the frame against the binding: required columns, non-null
// keys, in-file key uniqueness, and numeric column types. Every violation is
// reported; nothing short-circuits, so one pass shows the caller all
// problems in the file.
func (p *Parser) Validate(f *sheet.Frame) (bool, []string) {
	b := p.binding
	var errs []string

	for _, col := range b.Required {
		if !f.HasColumn(col) {
			errs = append(errs, fmt.Sprintf("missing required column: %s", col))
		}
	}

	// Row checks run against whatever key columns the file actually has, so
	// a missing column never hides the other violations in the same pass.
	keys := make([]string, 0, len(b.Keys))
	for _, key := range b.Keys {
		if f.HasColumn(key) {
			keys = append(keys, key)
		}
	}

	if len(keys) > 0 && !b.DropNullKeys {
		for i, row := range f.Rows {
			for _, key := range keys {
				if row.IsNull(key) {
					errs = append(errs, fmt.Sprintf("row %d: null value in key column %s", i+1, key))
				}
			}
		}
	}

	if len(keys) > 0 && b.Duplicates == RejectDuplicates {
		seen := make(map[string]int, len(f.Rows))
		for i, row := range f.Rows {
			kv, ok := keyValue(row, keys)
			if !ok {
				continue
			}
			if first, dup := seen[kv]; dup {
				errs = append(errs, fmt.Sprintf("row %d: duplicate key (%s) also on row %d",
					i+1, kv, first))
			} else {
				seen[kv] = i + 1
			}
		}
	}

	for _, col := range p.binding.numericColumns() {
		if !f.HasColumn(col) {
			continue
		}
		for i, row := range f.Rows {
			if row.IsNull(col) {
				continue
			}
			if !isNumericCell(row[col]) {
				errs = append(errs, fmt.Sprintf("row %d: non-numeric value in column %s", i+1, col))
			}
		}
	}

	if b.ValidateHook != nil {
		errs = append(errs, b.ValidateHook(f)...)
	}

	return len(errs) == 0, errs
}

// Clean applies table-specific normalization beyond the shared sentinel
// pass: date formatting, null-key row drops, declared keep-last
// deduplication, and the binding's own hook.
func (p *Parser) Clean(f *sheet.Frame) *sheet.Frame {
	b := p.binding

	for _, col := range b.DateColumns {
		if !f.HasColumn(col) {
			continue
		}
		for _, row := range f.Rows {
			if row.IsNull(col) {
				continue
			}
			if t, ok := sheet.DecodeDate(row[col]); ok {
				row[col] = sheet.FormatDate(t)
			} else {
				row[col] = nil
			}
		}
	}

	if b.DropNullKeys && len(b.Keys) > 0 {
		kept := f.Rows[:0]
		for _, row := range f.Rows {
			if _, ok := keyValue(row, b.Keys); ok {
				kept = append(kept, row)
			}
		}
		f.Rows = kept
	}

	if b.Duplicates == KeepLast && len(b.Keys) > 0 {
		f.Rows = dedupeKeepLast(f.Rows, b.Keys)
	}

	if b.CleanHook != nil {
		f = b.CleanHook(f)
	}

	return f
}

// dedupeKeepLast keeps the last occurrence of each key, preserving the
// original order of the survivors.
func dedupeKeepLast(rows []sheet.Row, keys []string) []sheet.Row {
	last := make(map[string]int, len(rows))
	for i, row := range rows {
		if kv, ok := keyValue(row, keys); ok {
			last[kv] = i
		}
	}

	out := rows[:0]
	for i, row := range rows {
		kv, ok := keyValue(row, keys)
		if !ok || last[kv] == i {
			out = append(out, row)
		}
	}
	return out
}

// keyValue renders the key tuple of a row as a comparable string. The second
// return is false when any key cell is null.
func keyValue(row sheet.Row, keys []string) (string, bool) {
	parts := make([]string, len(keys))
	for i, key := range keys {
		if row.IsNull(key) {
			return "", false
		}
		parts[i] = fmt.Sprintf("%v", row[key])
	}
	return strings.Join(parts, ","), true
}

func isNumericCell(v any) bool {
	switch val := v.(type) {
	case int64, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return err == nil
	}
	return false
}
