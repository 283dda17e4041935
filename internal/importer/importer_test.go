package importer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/archbyuk/dermacare-engine-sub000/internal/storage"
)

// fakeDB hands out fake transactions over a shared fakeQuerier so tests can
// assert on commit/rollback behavior.
type fakeDB struct {
	*fakeQuerier
	txs []*fakeTx
}

type fakeTx struct {
	*fakeQuerier
	committed  bool
	rolledBack bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{fakeQuerier: newFakeQuerier()}
}

func (db *fakeDB) Begin(ctx context.Context) (storage.Tx, error) {
	tx := &fakeTx{fakeQuerier: db.fakeQuerier}
	db.txs = append(db.txs, tx)
	return tx, nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.rolledBack = true
	return nil
}

func bundleCSV(rows ...string) []byte {
	lines := []string{
		"desc,desc,desc",
		"1,1,1",
		"INT,INT,INT",
		"GroupID,ID,Release",
	}
	lines = append(lines, rows...)
	return []byte(strings.Join(lines, "\n") + "\n")
}

func testService(db storage.DB) *Service {
	registry := NewRegistry([]Binding{
		compositeBinding(RejectDuplicates),
		{
			Table:       "Enum",
			Pattern:     "enum",
			PivotLayout: true,
			Keys:        []string{"enum_type", "id"},
			IntColumns:  []string{"id"},
		},
	})
	return NewService(db, registry)
}

func TestImportFile_FullPipeline(t *testing.T) {
	db := newFakeDB()
	s := testService(db)

	out := s.ImportFile(context.Background(), "procedure_bundle.csv",
		bundleCSV("1,1,1", "1,2,0", "1,3,5"))

	if !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
	if out.TableName != "Procedure_Bundle" {
		t.Errorf("table = %s", out.TableName)
	}
	if out.Filename != "procedure_bundle.csv" {
		t.Errorf("filename = %s", out.Filename)
	}
	// The Release=5 row is dropped by the data-quality gate before insert.
	if out.TotalRows != 2 || out.InsertedCount != 2 {
		t.Errorf("outcome = %+v, want 2 rows inserted", out)
	}
	if len(db.txs) != 1 || !db.txs[0].committed {
		t.Error("file must commit its transaction")
	}
}

func TestImportFile_ValidationFailureWritesNothing(t *testing.T) {
	db := newFakeDB()
	s := testService(db)

	// Duplicate (1,1) keys under reject policy.
	out := s.ImportFile(context.Background(), "procedure_bundle.csv",
		bundleCSV("1,1,1", "1,1,0"))

	if out.Success {
		t.Fatal("outcome succeeded, want validation failure")
	}
	if out.ErrorCount == 0 {
		t.Error("outcome carries no errors")
	}
	if len(db.txs) != 0 {
		t.Error("no transaction may start for an invalid file")
	}
	if len(db.inserts) != 0 {
		t.Error("invalid file must write nothing")
	}
}

func TestImportFile_StorageErrorRollsBack(t *testing.T) {
	db := newFakeDB()
	db.failExec = 2
	s := testService(db)

	out := s.ImportFile(context.Background(), "procedure_bundle.csv",
		bundleCSV("1,1,1", "1,2,1", "1,3,1"))

	if out.Success {
		t.Fatal("outcome succeeded, want storage failure")
	}
	if len(db.txs) != 1 {
		t.Fatalf("txs = %d, want 1", len(db.txs))
	}
	if !db.txs[0].rolledBack || db.txs[0].committed {
		t.Error("failed file must roll back, not commit")
	}
}

func TestImportFile_UnknownFilename(t *testing.T) {
	db := newFakeDB()
	s := testService(db)

	out := s.ImportFile(context.Background(), "mystery.csv", bundleCSV("1,1,1"))

	if out.Success {
		t.Fatal("outcome succeeded for unknown filename")
	}
	if out.TableName != "unknown" {
		t.Errorf("table = %s, want unknown", out.TableName)
	}
	if len(db.txs) != 0 {
		t.Error("dispatch failure must not touch storage")
	}
}

func TestImportFile_PivotLayout(t *testing.T) {
	db := newFakeDB()
	s := testService(db)

	data := []byte("Color,Size\nred,s\nblue,\n")
	out := s.ImportFile(context.Background(), "enum.csv", data)

	if !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
	if out.InsertedCount != 3 {
		t.Errorf("inserted = %d, want 3 pivot records", out.InsertedCount)
	}
}

func TestImportFile_StructuralError(t *testing.T) {
	db := newFakeDB()
	s := testService(db)

	out := s.ImportFile(context.Background(), "procedure_bundle.csv",
		[]byte("only,one,row\n"))

	if out.Success {
		t.Fatal("outcome succeeded for structurally broken file")
	}
	if len(db.txs) != 0 {
		t.Error("structural failure must not touch storage")
	}
}

func TestImportBatch_TriState(t *testing.T) {
	good := bundleCSV("1,1,1")
	bad := []byte("x\n")

	tests := []struct {
		name  string
		files []File
		want  BatchStatus
	}{
		{"empty", nil, BatchEmpty},
		{"all succeeded", []File{
			{Name: "procedure_bundle.csv", Data: good},
		}, BatchAllSucceeded},
		{"partial", []File{
			{Name: "procedure_bundle.csv", Data: good},
			{Name: "procedure_bundle_broken.csv", Data: bad},
		}, BatchPartial},
		{"all failed", []File{
			{Name: "mystery.csv", Data: good},
			{Name: "procedure_bundle_broken.csv", Data: bad},
		}, BatchAllFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newFakeDB()
			s := testService(db)

			out := s.ImportBatch(context.Background(), tt.files, false)

			if out.Status != tt.want {
				t.Errorf("status = %s, want %s", out.Status, tt.want)
			}
			if out.TotalFiles != len(tt.files) {
				t.Errorf("total = %d, want %d", out.TotalFiles, len(tt.files))
			}
			if out.SuccessfulFiles+out.FailedFiles != len(tt.files) {
				t.Errorf("succeeded %d + failed %d != %d",
					out.SuccessfulFiles, out.FailedFiles, len(tt.files))
			}
			if out.BatchID == "" {
				t.Error("batch id missing")
			}
			if len(out.Results) != len(tt.files) {
				t.Fatalf("results = %d, want %d", len(out.Results), len(tt.files))
			}
			// Results stay aligned with the input order.
			for i, f := range tt.files {
				if out.Results[i].Filename != f.Name {
					t.Errorf("results[%d].Filename = %s, want %s",
						i, out.Results[i].Filename, f.Name)
				}
			}
		})
	}
}

func TestImportFile_LogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	db := newFakeDB()
	s := testService(db)

	out := s.ImportFile(ctx, "procedure_bundle.csv", bundleCSV("1,1,1"))
	if !out.Success {
		t.Fatalf("outcome = %+v, want success", out)
	}
	if !strings.Contains(buf.String(), `"request_id":"req-123"`) {
		t.Errorf("log output missing request correlation: %s", buf.String())
	}
}

func TestImportBatch_ClearFirstScopedToTargetTables(t *testing.T) {
	db := newFakeDB()
	s := testService(db)

	out := s.ImportBatch(context.Background(), []File{
		{Name: "procedure_bundle.csv", Data: bundleCSV("1,1,1")},
	}, true)

	if out.Status != BatchAllSucceeded {
		t.Fatalf("status = %s, want %s", out.Status, BatchAllSucceeded)
	}
	if len(db.deletes) != 1 {
		t.Fatalf("deletes = %d, want only the submitted file's table", len(db.deletes))
	}
	if !strings.Contains(db.deletes[0].sql, `"Procedure_Bundle"`) {
		t.Errorf("delete targets %q, want Procedure_Bundle", db.deletes[0].sql)
	}
	// Enum is registered but no file maps to it; its rows survive the clear.
	for _, d := range db.deletes {
		if strings.Contains(d.sql, `"Enum"`) {
			t.Errorf("clear touched an unrelated table: %q", d.sql)
		}
	}
}

func TestTruncate_ReportsPerTableCounts(t *testing.T) {
	db := newFakeDB()
	s := testService(db)

	counts, err := s.Truncate(context.Background(), []string{"Procedure_Bundle"})
	if err != nil {
		t.Fatalf("Truncate() error = %v", err)
	}
	if len(counts) != 1 {
		t.Fatalf("counts = %v, want only Procedure_Bundle", counts)
	}
	if _, ok := counts["Procedure_Bundle"]; !ok {
		t.Errorf("counts = %v, missing Procedure_Bundle", counts)
	}
	if len(db.txs) != 1 || !db.txs[0].committed {
		t.Error("truncate must commit its transaction")
	}
}

func TestTruncate_RejectsUnknownTable(t *testing.T) {
	db := newFakeDB()
	s := testService(db)

	_, err := s.Truncate(context.Background(), []string{"Procedure_Bundle", "Nope"})
	if !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("Truncate() error = %v, want ErrUnknownTable", err)
	}
	if len(db.txs) != 0 {
		t.Error("unknown table must abort before anything is deleted")
	}
}

func TestTruncate_EmptyListClearsAllRegisteredTables(t *testing.T) {
	db := newFakeDB()
	s := testService(db)

	counts, err := s.Truncate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Truncate() error = %v", err)
	}
	if len(counts) != 2 {
		t.Errorf("counts = %v, want both registered tables", counts)
	}
}

func TestImportFile_SizeLimit(t *testing.T) {
	db := newFakeDB()
	s := NewService(db, NewRegistry([]Binding{compositeBinding(RejectDuplicates)}),
		WithMaxFileSize(8))

	out := s.ImportFile(context.Background(), "procedure_bundle.csv",
		bundleCSV("1,1,1"))

	if out.Success {
		t.Fatal("oversized file must fail")
	}
	if len(db.txs) != 0 {
		t.Error("oversized file must not touch storage")
	}
}
