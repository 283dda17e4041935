package tables

import "github.com/archbyuk/dermacare-engine-sub000/internal/importer"

func init() {
	importer.Register(importer.Binding{
		Table:    "Consumables",
		Pattern:  "consumables",
		Keys:     []string{"ID"},
		Required: []string{"ID", "Name", "Release"},
		IntColumns: []string{
			"ID", "I_Value", "Price", "Unit_Price", "VAT",
		},
		FloatColumns: []string{"F_Value"},
		BoolColumns:  []string{"Release"},
		Duplicates:   importer.RejectDuplicates,
	})
}
