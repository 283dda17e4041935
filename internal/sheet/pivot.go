package sheet

import (
	"fmt"
	"strings"
)

// Pivot output columns. Each non-empty cell of a category column becomes one
// row keyed by (enum_type, id).
const (
	PivotCategoryColumn = "enum_type"
	PivotIDColumn       = "id"
	PivotLabelColumn    = "name"
)

// pivotIDStep spaces synthetic ids so labels can be inserted between
// existing entries without renumbering.
const pivotIDStep = 10

// Pivot reads the column-per-category layout used by the Enum table. Row 1
// is the category header; a column participates when its header is non-empty
// and does not start with "ID". Ids are synthesized per category as
// 10, 20, 30, ... in row order.
func Pivot(grid Grid) (*Frame, error) {
	if len(grid) < 2 {
		return nil, fmt.Errorf("%w: pivot file needs a header row and at least one data row", ErrStructural)
	}

	header := grid[0]
	frame := &Frame{Columns: []string{PivotCategoryColumn, PivotIDColumn, PivotLabelColumn}}

	for idx := range widestRow(grid) {
		category := cell(header, idx)
		if category == "" || strings.HasPrefix(category, "ID") {
			continue
		}

		id := int64(0)
		for _, raw := range grid[1:] {
			label := cell(raw, idx)
			if label == "" {
				continue
			}
			id += pivotIDStep
			frame.Rows = append(frame.Rows, Row{
				PivotCategoryColumn: category,
				PivotIDColumn:       id,
				PivotLabelColumn:    label,
			})
		}
	}

	if frame.Empty() {
		return nil, fmt.Errorf("%w: no category column produced any records", ErrStructural)
	}

	return frame, nil
}
