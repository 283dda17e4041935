// Package importer is the metadata-driven import pipeline: it routes inbound
// spreadsheet files to table bindings, validates and cleans the projected
// frames, and upserts them into the target tables atomically per file.
package importer

import (
	"errors"

	"github.com/archbyuk/dermacare-engine-sub000/internal/sheet"
)

// ErrUnsupportedFilename is returned when no dispatch rule matches an
// inbound filename. It is a pure routing failure: no table is touched.
var ErrUnsupportedFilename = errors.New("unsupported filename")

// ErrUnknownTable is returned when a truncate names a table no binding
// registers. The check runs before any row is deleted.
var ErrUnknownTable = errors.New("unknown target table")

// DuplicatePolicy declares how a binding treats repeated key values within a
// single incoming file. The policy is part of the binding, never inferred.
type DuplicatePolicy int

const (
	// RejectDuplicates fails validation when the same key appears twice.
	RejectDuplicates DuplicatePolicy = iota
	// KeepLast silently drops all but the last occurrence before insertion.
	KeepLast
)

// Binding associates a filename pattern with everything the generic parser
// needs to know about one target table.
type Binding struct {
	// Table is the physical table name, also used in outcomes and logs.
	Table string
	// Pattern is matched case-insensitively as a substring of the inbound
	// filename. Longer patterns are always tried first.
	Pattern string

	// Keys are the primary-key column(s), single or composite.
	Keys []string
	// Required columns must be present after projection.
	Required []string

	// Column sets steering normalization, validation and cleaning.
	IntColumns   []string
	FloatColumns []string
	BoolColumns  []string
	DateColumns  []string

	// Duplicates is the declared in-file duplicate-key policy.
	Duplicates DuplicatePolicy

	// PivotLayout selects the column-per-category extraction instead of the
	// four-row schema descriptor.
	PivotLayout bool

	// Singleton tables keep a single configuration row; only the first data
	// row is applied, always to the same key.
	Singleton bool

	// DropNullKeys drops rows with null key cells during clean instead of
	// failing validation. Used where the source legitimately carries blanks.
	DropNullKeys bool

	// ValidateHook adds table-specific checks; returned messages are
	// aggregated with the generic ones.
	ValidateHook func(f *sheet.Frame) []string
	// CleanHook runs after generic cleaning for table-specific fixes.
	CleanHook func(f *sheet.Frame) *sheet.Frame
}

// numericColumns returns the int and float column sets combined, the set the
// "must be numeric" validation applies to.
func (b Binding) numericColumns() []string {
	out := make([]string, 0, len(b.IntColumns)+len(b.FloatColumns))
	out = append(out, b.IntColumns...)
	out = append(out, b.FloatColumns...)
	return out
}

// Outcome is the uniform per-file report every parser invocation produces.
type Outcome struct {
	Success       bool     `json:"success"`
	TableName     string   `json:"table_name"`
	TotalRows     int      `json:"total_rows"`
	InsertedCount int      `json:"inserted_count"`
	UpdatedCount  int      `json:"updated_count"`
	ErrorCount    int      `json:"error_count"`
	Errors        []string `json:"errors,omitempty"`
	Filename      string   `json:"filename"`
}

// failure builds a failed outcome for a file with the given messages.
func failure(table, filename string, errs ...string) Outcome {
	return Outcome{
		TableName:  table,
		Filename:   filename,
		ErrorCount: len(errs),
		Errors:     errs,
	}
}

// BatchStatus is the deterministic tri-state of a batch outcome.
type BatchStatus string

const (
	BatchEmpty        BatchStatus = "empty"
	BatchAllSucceeded BatchStatus = "all_succeeded"
	BatchPartial      BatchStatus = "partial"
	BatchAllFailed    BatchStatus = "all_failed"
)

// BatchOutcome merges the per-file outcomes of one batch call.
type BatchOutcome struct {
	BatchID         string      `json:"batch_id"`
	Status          BatchStatus `json:"status"`
	TotalFiles      int         `json:"total_files"`
	SuccessfulFiles int         `json:"successful_files"`
	FailedFiles     int         `json:"failed_files"`
	Results         []Outcome   `json:"results"`
}

// File is one inbound (filename, bytes) pair.
type File struct {
	Name string
	Data []byte
}
