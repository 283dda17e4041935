package tables

import (
	"github.com/archbyuk/dermacare-engine-sub000/internal/importer"
	"github.com/archbyuk/dermacare-engine-sub000/internal/sheet"
)

func init() {
	importer.Register(importer.Binding{
		Table:    "Procedure_Element",
		Pattern:  "procedure_element",
		Keys:     []string{"ID"},
		Required: []string{"ID", "Name", "Release"},
		IntColumns: []string{
			"ID", "Cost_Time", "Plan_Count", "Plan_Interval",
			"Consum_1_ID", "Consum_1_Count", "Procedure_Level", "Price",
		},
		BoolColumns: []string{"Release", "Plan_State"},
		Duplicates:  importer.RejectDuplicates,
		CleanHook:   defaultElementCounts,
	})

	importer.Register(importer.Binding{
		Table:    "Procedure_Bundle",
		Pattern:  "procedure_bundle",
		Keys:     []string{"GroupID", "ID"},
		Required: []string{"GroupID", "ID", "Release"},
		IntColumns: []string{
			"GroupID", "ID", "Element_ID", "Element_Cost",
		},
		FloatColumns: []string{"Price_Ratio"},
		BoolColumns:  []string{"Release"},
		Duplicates:   importer.KeepLast,
	})

	importer.Register(importer.Binding{
		Table:    "Procedure_Custom",
		Pattern:  "procedure_custom",
		Keys:     []string{"GroupID", "ID"},
		Required: []string{"GroupID", "ID", "Release"},
		IntColumns: []string{
			"GroupID", "ID", "Element_ID", "Custom_Count", "Element_Limit",
		},
		FloatColumns: []string{"Price_Ratio"},
		BoolColumns:  []string{"Release"},
		Duplicates:   importer.RejectDuplicates,
	})

	importer.Register(importer.Binding{
		Table:    "Procedure_Sequence",
		Pattern:  "procedure_sequence",
		Keys:     []string{"GroupID", "ID"},
		Required: []string{"GroupID", "ID", "Release"},
		IntColumns: []string{
			"GroupID", "ID", "Step_Num", "Element_ID", "Bundle_ID",
			"Custom_ID", "Sequence_Interval", "Procedure_Cost", "Price",
		},
		BoolColumns: []string{"Release"},
		Duplicates:  importer.KeepLast,
	})

	importer.Register(importer.Binding{
		Table:       "Procedure_Class",
		Pattern:     "procedure_class",
		Keys:        []string{"GroupID", "ID"},
		Required:    []string{"GroupID", "ID", "Release"},
		IntColumns:  []string{"GroupID", "ID"},
		BoolColumns: []string{"Release"},
		Duplicates:  importer.RejectDuplicates,
	})
}

// defaultElementCounts backfills the plan and consumable counts an element
// sheet habitually leaves blank when a single unit is meant.
func defaultElementCounts(f *sheet.Frame) *sheet.Frame {
	for _, col := range []string{"Plan_Count", "Consum_1_Count"} {
		if !f.HasColumn(col) {
			continue
		}
		for _, row := range f.Rows {
			if row.IsNull(col) {
				row[col] = int64(1)
			}
		}
	}
	return f
}
