package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/archbyuk/dermacare-engine-sub000/internal/sheet"
	"github.com/archbyuk/dermacare-engine-sub000/internal/storage"
	"github.com/jackc/pgx/v5"
)

// Insert upserts every frame row into the binding's table: rows whose key
// already exists get all non-key attributes overwritten, the rest are
// inserted. The caller owns the transaction; the first storage error aborts
// so the whole file rolls back as one unit.
func (p *Parser) Insert(ctx context.Context, q storage.Querier, f *sheet.Frame) (Outcome, error) {
	if p.binding.Singleton {
		return p.insertSingleton(ctx, q, f)
	}

	b := p.binding
	out := Outcome{TableName: b.Table, TotalRows: len(f.Rows)}

	nonKeys := excludeColumns(f.Columns, b.Keys)
	existsSQL := existsQuery(b.Table, b.Keys)
	insertSQL := insertQuery(b.Table, f.Columns)
	updateSQL := updateQuery(b.Table, nonKeys, b.Keys)

	for i, row := range f.Rows {
		keyArgs := columnValues(row, b.Keys)

		var one int
		err := q.QueryRow(ctx, existsSQL, keyArgs...).Scan(&one)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			if _, err := q.Exec(ctx, insertSQL, columnValues(row, f.Columns)...); err != nil {
				return out, fmt.Errorf("%s row %d: insert: %w", b.Table, i+1, err)
			}
			out.InsertedCount++

		case err != nil:
			return out, fmt.Errorf("%s row %d: lookup: %w", b.Table, i+1, err)

		default:
			if len(nonKeys) == 0 {
				continue
			}
			args := append(columnValues(row, nonKeys), keyArgs...)
			if _, err := q.Exec(ctx, updateSQL, args...); err != nil {
				return out, fmt.Errorf("%s row %d: update: %w", b.Table, i+1, err)
			}
			out.UpdatedCount++
		}
	}

	out.Success = true
	return out, nil
}

// insertSingleton applies the first data row to the table's single
// configuration record, creating it when absent.
func (p *Parser) insertSingleton(ctx context.Context, q storage.Querier, f *sheet.Frame) (Outcome, error) {
	b := p.binding
	out := Outcome{TableName: b.Table, TotalRows: len(f.Rows)}

	if f.Empty() {
		out.Success = true
		return out, nil
	}
	row := f.Rows[0]

	var id int64
	err := q.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s LIMIT 1`,
		quoteIdent("ID"), quoteIdent(b.Table), quoteIdent("ID"))).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if _, err := q.Exec(ctx, insertQuery(b.Table, f.Columns), columnValues(row, f.Columns)...); err != nil {
			return out, fmt.Errorf("%s: insert: %w", b.Table, err)
		}
		out.InsertedCount = 1

	case err != nil:
		return out, fmt.Errorf("%s: lookup: %w", b.Table, err)

	default:
		// Never rewrite the row's own ID, even when the file carries one.
		cols := excludeColumns(f.Columns, []string{"ID"})
		args := append(columnValues(row, cols), id)
		if _, err := q.Exec(ctx, updateQuery(b.Table, cols, []string{"ID"}), args...); err != nil {
			return out, fmt.Errorf("%s: update: %w", b.Table, err)
		}
		out.UpdatedCount = 1
	}

	if len(f.Rows) > 1 {
		out.Errors = append(out.Errors,
			fmt.Sprintf("%s keeps a single configuration row; only the first of %d rows was applied",
				b.Table, len(f.Rows)))
	}

	out.Success = true
	return out, nil
}

func existsQuery(table string, keys []string) string {
	return fmt.Sprintf(`SELECT 1 FROM %s WHERE %s`, quoteIdent(table), wherePlaceholders(keys, 1))
}

func insertQuery(table string, columns []string) string {
	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func updateQuery(table string, columns, keys []string) string {
	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", quoteIdent(c), i+1)
	}
	return fmt.Sprintf(`UPDATE %s SET %s WHERE %s`,
		quoteIdent(table), strings.Join(sets, ", "), wherePlaceholders(keys, len(columns)+1))
}

func wherePlaceholders(keys []string, start int) string {
	conds := make([]string, len(keys))
	for i, k := range keys {
		conds[i] = fmt.Sprintf("%s = $%d", quoteIdent(k), start+i)
	}
	return strings.Join(conds, " AND ")
}

// quoteIdent double-quotes an identifier; the target schema uses mixed-case
// table and column names.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func excludeColumns(columns, drop []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		skip := false
		for _, d := range drop {
			if c == d {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, c)
		}
	}
	return out
}

func columnValues(row sheet.Row, columns []string) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = row[c]
	}
	return out
}
