package tables

import "github.com/archbyuk/dermacare-engine-sub000/internal/importer"

// Global is a one-row settings table; only the first data row is applied.
func init() {
	importer.Register(importer.Binding{
		Table:     "Global",
		Pattern:   "global",
		Singleton: true,
		Required:  []string{"Doc_Price_Minute"},
		IntColumns: []string{
			"ID", "Doc_Price_Minute", "Aesthetician_Price_Minute",
		},
	})
}
