// Package tables declares one Binding per target table. Each file
// registers its bindings in init(), so importing the package for side
// effects is enough to populate the dispatch registry.
package tables

import (
	"github.com/archbyuk/dermacare-engine-sub000/internal/importer"
	"github.com/archbyuk/dermacare-engine-sub000/internal/sheet"
)

func init() {
	importer.Register(importer.Binding{
		Table:       "Enum",
		Pattern:     "enum",
		PivotLayout: true,
		Keys:        []string{sheet.PivotCategoryColumn, sheet.PivotIDColumn},
		Required: []string{
			sheet.PivotCategoryColumn,
			sheet.PivotIDColumn,
			sheet.PivotLabelColumn,
		},
		IntColumns: []string{sheet.PivotIDColumn},
		Duplicates: importer.RejectDuplicates,
	})
}
