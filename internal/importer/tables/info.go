package tables

import "github.com/archbyuk/dermacare-engine-sub000/internal/importer"

// The three Info_ tables carry customer-facing copy keyed by the product id
// they describe. Info_Membership sheets legitimately carry trailing blank-ID
// rows, so those are dropped during clean instead of failing validation.
func init() {
	importer.Register(importer.Binding{
		Table:       "Info_Standard",
		Pattern:     "info_standard",
		Keys:        []string{"ID"},
		Required:    []string{"ID", "Product_Standard_Name", "Release"},
		IntColumns:  []string{"ID"},
		BoolColumns: []string{"Release"},
		Duplicates:  importer.RejectDuplicates,
	})

	importer.Register(importer.Binding{
		Table:       "Info_Event",
		Pattern:     "info_event",
		Keys:        []string{"ID"},
		Required:    []string{"ID", "Event_Name", "Release"},
		IntColumns:  []string{"ID"},
		BoolColumns: []string{"Release"},
		Duplicates:  importer.RejectDuplicates,
	})

	importer.Register(importer.Binding{
		Table:        "Info_Membership",
		Pattern:      "info_membership",
		Keys:         []string{"ID"},
		Required:     []string{"ID", "Membership_Name", "Release"},
		IntColumns:   []string{"ID"},
		BoolColumns:  []string{"Release"},
		Duplicates:   importer.RejectDuplicates,
		DropNullKeys: true,
	})
}
