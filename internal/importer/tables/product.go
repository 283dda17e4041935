package tables

import "github.com/archbyuk/dermacare-engine-sub000/internal/importer"

func init() {
	importer.Register(importer.Binding{
		Table:    "Product_Standard",
		Pattern:  "product_standard",
		Keys:     []string{"ID"},
		Required: []string{"ID", "Package_Type", "Release"},
		IntColumns: []string{
			"ID", "Element_ID", "Bundle_ID", "Custom_ID", "Sequence_ID",
			"Standard_Info_ID", "Procedure_Cost", "Original_Price",
			"Sell_Price", "Margin", "VAT", "Validity_Period",
		},
		FloatColumns: []string{"Discount_Rate", "Margin_Rate"},
		BoolColumns:  []string{"Release"},
		DateColumns:  []string{"Standard_Start_Date", "Standard_End_Date"},
		Duplicates:   importer.RejectDuplicates,
	})

	importer.Register(importer.Binding{
		Table:    "Product_Event",
		Pattern:  "product_event",
		Keys:     []string{"ID"},
		Required: []string{"ID", "Package_Type", "Release"},
		IntColumns: []string{
			"ID", "Element_ID", "Bundle_ID", "Custom_ID", "Sequence_ID",
			"Event_Info_ID", "Procedure_Cost", "Original_Price",
			"Sell_Price", "Margin", "VAT", "Validity_Period",
		},
		FloatColumns: []string{"Discount_Rate", "Margin_Rate"},
		BoolColumns:  []string{"Release"},
		DateColumns:  []string{"Event_Start_Date", "Event_End_Date"},
		Duplicates:   importer.RejectDuplicates,
	})
}
