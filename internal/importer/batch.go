package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/archbyuk/dermacare-engine-sub000/internal/logging"
	"github.com/archbyuk/dermacare-engine-sub000/internal/storage"
)

// ImportBatch processes a set of files concurrently, one transaction per
// file. Files fail independently; the batch status is the tri-state merge
// of the per-file outcomes. When clearFirst is set, the target tables of
// the submitted files are truncated before any file is processed; tables
// no file maps to are left alone.
func (s *Service) ImportBatch(ctx context.Context, files []File, clearFirst bool) BatchOutcome {
	batchID := uuid.New().String()
	start := time.Now()
	logger := logging.FromContext(ctx).With("batch_id", batchID)
	logger.Info("batch started", "files", len(files), "clear_first", clearFirst)

	out := BatchOutcome{
		BatchID:    batchID,
		Status:     BatchEmpty,
		TotalFiles: len(files),
		Results:    make([]Outcome, len(files)),
	}
	if len(files) == 0 {
		return out
	}

	if clearFirst {
		if _, err := s.Truncate(ctx, targetTables(s.registry, files)); err != nil {
			logger.Error("truncate before batch failed", "error", err)
			for i, f := range files {
				out.Results[i] = failure("unknown", f.Name,
					fmt.Sprintf("clear before import: %v", err))
			}
			out.FailedFiles = len(files)
			out.Status = BatchAllFailed
			return out
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)
	for i, f := range files {
		g.Go(func() error {
			out.Results[i] = s.ImportFile(gctx, f.Name, f.Data)
			return nil
		})
	}
	// Workers never return errors; failures live in the per-file outcomes.
	_ = g.Wait()

	for _, r := range out.Results {
		if r.Success {
			out.SuccessfulFiles++
		} else {
			out.FailedFiles++
		}
	}
	switch {
	case out.FailedFiles == 0:
		out.Status = BatchAllSucceeded
	case out.SuccessfulFiles == 0:
		out.Status = BatchAllFailed
	default:
		out.Status = BatchPartial
	}

	logger.Info("batch finished",
		"status", out.Status,
		"succeeded", out.SuccessfulFiles,
		"failed", out.FailedFiles,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out
}

// targetTables resolves the distinct target tables of the submitted files,
// in first-seen order. Files matching no binding are skipped here; they
// produce their own failures during import.
func targetTables(reg *Registry, files []File) []string {
	seen := make(map[string]bool, len(files))
	var tables []string
	for _, f := range files {
		b, err := reg.Select(f.Name)
		if err != nil || seen[b.Table] {
			continue
		}
		seen[b.Table] = true
		tables = append(tables, b.Table)
	}
	return tables
}

// Truncate empties the given target tables in one transaction and reports
// how many rows each held. An empty list means every registered table.
// A name the registry does not know aborts before anything is deleted.
func (s *Service) Truncate(ctx context.Context, tables []string) (map[string]int64, error) {
	if len(tables) == 0 {
		tables = s.registry.Tables()
	}
	known := make(map[string]bool)
	for _, t := range s.registry.Tables() {
		known[t] = true
	}
	for _, t := range tables {
		if !known[t] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, t)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		before, err := rowCount(ctx, tx, table)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", quoteIdent(table)))
		if err != nil {
			return nil, fmt.Errorf("truncate %s: %w", table, err)
		}
		counts[table] = tag.RowsAffected()
		logging.FromContext(ctx).Info("table cleared",
			"table", table,
			"rows_before", before,
			"rows_deleted", tag.RowsAffected(),
		)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit truncate: %w", err)
	}
	return counts, nil
}

func rowCount(ctx context.Context, q storage.Querier, table string) (int64, error) {
	var n int64
	err := q.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))).Scan(&n)
	return n, err
}
