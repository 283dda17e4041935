package tables

import "github.com/archbyuk/dermacare-engine-sub000/internal/importer"

// "membership" is a substring of "info_membership"; dispatch orders rules by
// descending pattern length, so this binding only catches the plain
// membership sheets.
func init() {
	importer.Register(importer.Binding{
		Table:    "Membership",
		Pattern:  "membership",
		Keys:     []string{"ID"},
		Required: []string{"ID", "Release"},
		IntColumns: []string{
			"ID", "Membership_Info_ID", "Element_ID", "Bundle_ID",
			"Custom_ID", "Sequence_ID", "Payment_Amount", "Credit",
			"Bonus_Point", "Validity_Period",
		},
		FloatColumns: []string{"Discount_Rate"},
		BoolColumns:  []string{"Release"},
		DateColumns:  []string{"Release_Start_Date", "Release_End_Date"},
		Duplicates:   importer.RejectDuplicates,
	})
}
