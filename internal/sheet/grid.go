package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// Grid is the raw row/column view of a file before any metadata
// interpretation. Cells are the verbatim string contents.
type Grid [][]string

// xlsxMagic is the ZIP local-file-header signature that opens every
// OOXML workbook.
var xlsxMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// DecodeGrid parses file bytes into a Grid. Workbooks are detected by their
// ZIP signature and read from the first sheet; anything else is treated as
// CSV. Fully empty rows are dropped in both paths.
func DecodeGrid(data []byte) (Grid, error) {
	if bytes.HasPrefix(data, xlsxMagic) {
		return decodeWorkbook(data)
	}
	return decodeCSV(data)
}

func decodeWorkbook(data []byte) (Grid, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	return dropEmptyRows(rows), nil
}

func decodeCSV(data []byte) (Grid, error) {
	r := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	return dropEmptyRows(records), nil
}

func dropEmptyRows(rows [][]string) Grid {
	out := make(Grid, 0, len(rows))
	for _, row := range rows {
		if !isEmptyRow(row) {
			out = append(out, row)
		}
	}
	return out
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cell returns the trimmed value at the column index, tolerating ragged rows.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// the CSV reader never chokes on mixed encodings.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
