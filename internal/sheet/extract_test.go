package sheet

import (
	"errors"
	"testing"
)

// descriptorGrid builds an ordinary-format grid: four metadata rows followed
// by the given data rows.
func descriptorGrid(enable, tags, names []string, data ...[]string) Grid {
	desc := make([]string, len(names))
	for i := range desc {
		desc[i] = "description"
	}
	grid := Grid{desc, enable, tags, names}
	return append(grid, data...)
}

func TestExtract_ProjectsEnabledColumnsOnly(t *testing.T) {
	grid := descriptorGrid(
		[]string{"1", "0", "1", "0"},
		[]string{"INT", "VARCHAR", "VARCHAR", "INT"},
		[]string{"A", "B", "C", "D"},
		[]string{"1", "skip", "hello", "9"},
		[]string{"2", "skip", "world", "9"},
	)

	f, err := Extract(grid)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []string{"A", "C"}
	if len(f.Columns) != len(want) {
		t.Fatalf("Columns = %v, want %v", f.Columns, want)
	}
	for i, c := range want {
		if f.Columns[i] != c {
			t.Errorf("Columns[%d] = %q, want %q", i, f.Columns[i], c)
		}
	}

	if len(f.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(f.Rows))
	}
	if v, _ := f.Rows[0].Int("A"); v != 1 {
		t.Errorf("row 0 A = %v, want 1", f.Rows[0]["A"])
	}
	if v, _ := f.Rows[1].String("C"); v != "world" {
		t.Errorf("row 1 C = %v, want world", f.Rows[1]["C"])
	}
	if _, ok := f.Rows[0]["B"]; ok {
		t.Error("disabled column B leaked into the frame")
	}
}

func TestExtract_TypeCoercion(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		raw  string
		want any
	}{
		{"int plain", "INT", "42", int64(42)},
		{"int truncates decimal", "INT", "3.7", int64(3)},
		{"int unparseable", "INT", "abc", nil},
		{"float", "FLOAT", "1.5", 1.5},
		{"decimal tag is float", "DECIMAL", "2.25", 2.25},
		{"float unparseable", "FLOAT", "x", nil},
		{"bool stays integer", "BOOL", "1", int64(1)},
		{"varchar", "VARCHAR", "hello", "hello"},
		{"text tag", "TEXT", "hi", "hi"},
		{"string nan folds to null", "STRING", "nan", nil},
		{"unknown tag falls back to string", "WEIRD", "kept", "kept"},
		{"tag is substring matched", "BIGINT", "7", int64(7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := descriptorGrid(
				[]string{"1", "1"},
				[]string{tt.tag, "VARCHAR"},
				[]string{"X", "Pad"},
				[]string{tt.raw, "pad"},
			)
			f, err := Extract(grid)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got := f.Rows[0]["X"]; got != tt.want {
				t.Errorf("coerced %q as %s = %v (%T), want %v", tt.raw, tt.tag, got, got, tt.want)
			}
		})
	}
}

func TestExtract_VATRoundsToNearest(t *testing.T) {
	grid := descriptorGrid(
		[]string{"1", "1"},
		[]string{"INT", "INT"},
		[]string{"VAT", "Price"},
		[]string{"9.6", "9.6"},
	)

	f, err := Extract(grid)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if v, _ := f.Rows[0].Int("VAT"); v != 10 {
		t.Errorf("VAT = %v, want 10 (rounded)", f.Rows[0]["VAT"])
	}
	if v, _ := f.Rows[0].Int("Price"); v != 9 {
		t.Errorf("Price = %v, want 9 (truncated)", f.Rows[0]["Price"])
	}
}

func TestExtract_ReleaseGateDropsOutOfRangeRows(t *testing.T) {
	grid := descriptorGrid(
		[]string{"1", "1"},
		[]string{"INT", "INT"},
		[]string{"ID", "Release"},
		[]string{"1", "1"},
		[]string{"2", "0"},
		[]string{"3", "2"},
		[]string{"4", "x"},
	)

	f, err := Extract(grid)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(f.Rows) != 2 {
		t.Fatalf("rows = %d, want 2 (Release must be exactly 0 or 1)", len(f.Rows))
	}
	for _, row := range f.Rows {
		if n, ok := row.Int("Release"); !ok || (n != 0 && n != 1) {
			t.Errorf("surviving row has Release = %v", row["Release"])
		}
	}
}

func TestExtract_DropsAllNullRows(t *testing.T) {
	grid := descriptorGrid(
		[]string{"1", "1"},
		[]string{"INT", "VARCHAR"},
		[]string{"A", "B"},
		[]string{"1", "x"},
		[]string{"", ""},
		[]string{"2", "y"},
	)

	f, err := Extract(grid)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(f.Rows) != 2 {
		t.Errorf("rows = %d, want 2 (all-null row dropped)", len(f.Rows))
	}
}

func TestExtract_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		grid Grid
	}{
		{"too few rows", Grid{
			{"d"}, {"1"}, {"INT"}, {"A"},
		}},
		{"no enabled columns", descriptorGrid(
			[]string{"0", "0"},
			[]string{"INT", "INT"},
			[]string{"A", "B"},
			[]string{"1", "2"},
		)},
		{"empty grid", Grid{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.grid)
			if !errors.Is(err, ErrStructural) {
				t.Errorf("Extract() error = %v, want ErrStructural", err)
			}
		})
	}
}

func TestExtract_RaggedRows(t *testing.T) {
	// Metadata and data rows shorter than the widest row still project.
	grid := Grid{
		{"d", "d", "d"},
		{"1", "1", "1"},
		{"INT", "VARCHAR"},
		{"A", "B", "C"},
		{"1", "x"},
	}

	f, err := Extract(grid)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(f.Columns) != 3 {
		t.Fatalf("Columns = %v, want 3 columns", f.Columns)
	}
	if !f.Rows[0].IsNull("C") {
		t.Errorf("missing trailing cell should be null, got %v", f.Rows[0]["C"])
	}
}
