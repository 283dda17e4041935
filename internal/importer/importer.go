package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/archbyuk/dermacare-engine-sub000/internal/logging"
	"github.com/archbyuk/dermacare-engine-sub000/internal/sheet"
	"github.com/archbyuk/dermacare-engine-sub000/internal/storage"
)

// Service runs the import pipeline against one database. It is safe for
// concurrent use; every file gets its own transaction from the pool.
type Service struct {
	db            storage.DB
	registry      *Registry
	maxFileSize   int64
	maxConcurrent int
}

// Option tweaks a Service.
type Option func(*Service)

// WithMaxFileSize caps the accepted size of a single file in bytes.
func WithMaxFileSize(n int64) Option {
	return func(s *Service) { s.maxFileSize = n }
}

// WithMaxConcurrent limits how many files a batch processes in parallel.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) { s.maxConcurrent = n }
}

// NewService builds a Service over a database and a dispatch registry.
func NewService(db storage.DB, registry *Registry, opts ...Option) *Service {
	s := &Service{
		db:            db,
		registry:      registry,
		maxFileSize:   100 * 1024 * 1024,
		maxConcurrent: 5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tables lists the target tables the service can import into.
func (s *Service) Tables() []string {
	return s.registry.Tables()
}

// ImportFile runs the full pipeline for one file: dispatch, extract,
// normalize, validate, clean, and an atomic insert. The outcome always
// carries the filename; a failed file leaves its table untouched.
func (s *Service) ImportFile(ctx context.Context, filename string, data []byte) Outcome {
	start := time.Now()
	logger := logging.FromContext(ctx).With("filename", filename)

	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return failure("unknown", filename,
			fmt.Sprintf("file exceeds %d byte limit", s.maxFileSize))
	}

	binding, err := s.registry.Select(filename)
	if err != nil {
		return failure("unknown", filename, err.Error())
	}
	logger = logger.With("table", binding.Table)

	frame, err := s.extract(binding, data)
	if err != nil {
		logger.Warn("extraction failed", "error", err)
		return failure(binding.Table, filename, err.Error())
	}
	if frame.Empty() {
		return failure(binding.Table, filename, "file has no usable data rows")
	}

	// Sentinel normalization is uniform across all parsers; bool columns
	// ride the integer coercion since they are stored as 0/1 markers.
	intCols := append(append([]string(nil), binding.IntColumns...), binding.BoolColumns...)
	frame = sheet.Normalize(frame, intCols, binding.FloatColumns)

	parser := NewParser(binding)

	if ok, errs := parser.Validate(frame); !ok {
		logger.Warn("validation failed", "errors", len(errs))
		return failure(binding.Table, filename, errs...)
	}

	frame = parser.Clean(frame)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return failure(binding.Table, filename, fmt.Sprintf("begin transaction: %v", err))
	}

	outcome, err := parser.Insert(ctx, tx, frame)
	if err != nil {
		_ = tx.Rollback(ctx)
		logger.Error("insert failed, file rolled back", "error", err)
		return failure(binding.Table, filename, err.Error())
	}
	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return failure(binding.Table, filename, fmt.Sprintf("commit: %v", err))
	}

	outcome.Filename = filename
	logger.Info("file imported",
		"rows", outcome.TotalRows,
		"inserted", outcome.InsertedCount,
		"updated", outcome.UpdatedCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return outcome
}

// extract picks the physical layout for the binding and projects the bytes
// into a frame.
func (s *Service) extract(b Binding, data []byte) (*sheet.Frame, error) {
	grid, err := sheet.DecodeGrid(data)
	if err != nil {
		return nil, err
	}
	if b.PivotLayout {
		return sheet.Pivot(grid)
	}
	return sheet.Extract(grid)
}

