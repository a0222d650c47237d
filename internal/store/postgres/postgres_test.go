package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"countyloader/internal/store"
)

//
// ==============================
//  FAKES (Test Doubles for pgx)
// ==============================
//

// fakePool implements poolLike.
type fakePool struct {
	tx       *fakeTx
	beginErr error
	execs    []string
	execErr  error
	rows     pgx.Rows
	queries  []string
	closed   bool
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return p.tx, nil
}

func (p *fakePool) Exec(_ context.Context, q string, _ ...any) (pgconn.CommandTag, error) {
	p.execs = append(p.execs, q)
	return pgconn.CommandTag{}, p.execErr
}

func (p *fakePool) Query(_ context.Context, q string, _ ...any) (pgx.Rows, error) {
	p.queries = append(p.queries, q)
	return p.rows, nil
}

func (p *fakePool) Close() { p.closed = true }

// fakeTx implements pgx.Tx with instrumentation for Exec, CopyFrom and the
// commit/rollback lifecycle.
type fakeTx struct {
	execs      []string
	execTag    pgconn.CommandTag
	copies     []string // target tables of CopyFrom
	copied     int64
	copyErr    error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Exec(_ context.Context, q string, _ ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, q)
	return t.execTag, nil
}

func (t *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }

// CopyFrom drains src the way pgx does.
func (t *fakeTx) CopyFrom(_ context.Context, table pgx.Identifier, _ []string, src pgx.CopyFromSource) (int64, error) {
	t.copies = append(t.copies, strings.Join(table, "."))
	if t.copyErr != nil {
		return 0, t.copyErr
	}
	var n int64
	for src.Next() {
		if _, err := src.Values(); err != nil {
			return n, err
		}
		n++
	}
	t.copied += n
	return n, src.Err()
}

func (t *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (t *fakeTx) Conn() *pgx.Conn                                        { return nil }
func (t *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.rolledBack = true; return nil }

// fakeRows serves canned key tuples to ExistingKeys.
type fakeRows struct {
	data   [][]*string
	i      int
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool                                   { r.i++; return r.i <= len(r.data) }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	for i := range dest {
		*(dest[i].(**string)) = row[i]
	}
	return nil
}

func strp(s string) *string { return &s }

func testTable() *store.Table {
	return &store.Table{
		Name:    "structural_elements",
		Columns: store.TextColumns([]string{"acct", "bld_num", "code"}, "bld_num"),
		Key:     []string{"acct", "bld_num", "code"},
		Unique:  true,
	}
}

//
// =======
//  TESTS
// =======
//

func TestInsertBatch_PlainCopy(t *testing.T) {
	tx := &fakeTx{}
	s := &Store{pool: &fakePool{tx: tx}}

	n, err := s.InsertBatch(context.Background(), testTable(), [][]any{{"1", 1, "A"}, {"2", 1, "B"}}, store.ConflictNone)
	if err != nil || n != 2 {
		t.Fatalf("InsertBatch = %d, %v", n, err)
	}
	if len(tx.copies) != 1 || tx.copies[0] != "structural_elements" {
		t.Fatalf("copy targets = %v", tx.copies)
	}
	if len(tx.execs) != 0 || !tx.committed {
		t.Fatalf("plain path should only COPY and commit: execs=%v committed=%v", tx.execs, tx.committed)
	}
}

// TestInsertBatch_DoNothingStagesThroughTempTable checks the temp-table
// sequence: create, COPY into temp, INSERT ... ON CONFLICT DO NOTHING, commit.
func TestInsertBatch_DoNothingStagesThroughTempTable(t *testing.T) {
	tx := &fakeTx{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	s := &Store{pool: &fakePool{tx: tx}}

	n, err := s.InsertBatch(context.Background(), testTable(), [][]any{{"1", 1, "A"}, {"1", 1, "A"}}, store.ConflictDoNothing)
	if err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows affected = %d, want 1", n)
	}
	if len(tx.execs) != 2 {
		t.Fatalf("execs = %v", tx.execs)
	}
	if !strings.Contains(tx.execs[0], `CREATE TEMP TABLE "tmp_structural_elements" ON COMMIT DROP`) {
		t.Fatalf("create temp = %s", tx.execs[0])
	}
	if !strings.Contains(tx.execs[1], `ON CONFLICT ("acct", "bld_num", "code") DO NOTHING`) {
		t.Fatalf("insert = %s", tx.execs[1])
	}
	if len(tx.copies) != 1 || tx.copies[0] != "tmp_structural_elements" || tx.copied != 2 {
		t.Fatalf("copy = %v (%d rows)", tx.copies, tx.copied)
	}
	if !tx.committed {
		t.Fatalf("expected commit")
	}
}

func TestInsertBatch_CopyErrorRollsBack(t *testing.T) {
	tx := &fakeTx{copyErr: errors.New("bad row")}
	s := &Store{pool: &fakePool{tx: tx}}

	if _, err := s.InsertBatch(context.Background(), testTable(), [][]any{{"1", 1, "A"}}, store.ConflictNone); err == nil {
		t.Fatalf("expected error")
	}
	if tx.committed || !tx.rolledBack {
		t.Fatalf("committed=%v rolledBack=%v", tx.committed, tx.rolledBack)
	}
}

func TestInsertBatch_BeginErrorAndEmpty(t *testing.T) {
	s := &Store{pool: &fakePool{beginErr: errors.New("down")}}
	if _, err := s.InsertBatch(context.Background(), testTable(), [][]any{{"1", 1, "A"}}, store.ConflictNone); err == nil {
		t.Fatalf("expected begin error")
	}
	if n, err := s.InsertBatch(context.Background(), testTable(), nil, store.ConflictNone); n != 0 || err != nil {
		t.Fatalf("empty batch = %d, %v", n, err)
	}
}

func TestInsertBatch_DoNothingNeedsKey(t *testing.T) {
	s := &Store{pool: &fakePool{tx: &fakeTx{}}}
	tbl := testTable()
	tbl.Key = nil
	if _, err := s.InsertBatch(context.Background(), tbl, [][]any{{"1", 1, "A"}}, store.ConflictDoNothing); err == nil {
		t.Fatalf("expected error without key")
	}
}

func TestExistingKeys_CastsAndNulls(t *testing.T) {
	rows := &fakeRows{data: [][]*string{
		{strp("1"), strp("1"), strp("A")},
		{strp("2"), nil, strp("B")},
	}}
	p := &fakePool{rows: rows}
	s := &Store{pool: p}

	var got [][]string
	if err := s.ExistingKeys(context.Background(), testTable(), func(k []string) { got = append(got, k) }); err != nil {
		t.Fatalf("ExistingKeys: %v", err)
	}
	if len(got) != 2 || got[1][1] != "" || got[0][2] != "A" {
		t.Fatalf("keys = %v", got)
	}
	if !strings.Contains(p.queries[0], `"bld_num"::text`) || !rows.closed {
		t.Fatalf("query = %s closed=%v", p.queries[0], rows.closed)
	}
}

func TestEnsureTable(t *testing.T) {
	p := &fakePool{}
	s := &Store{pool: p}
	if err := s.EnsureTable(context.Background(), testTable()); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	ddl := p.execs[0]
	for _, want := range []string{`CREATE TABLE IF NOT EXISTS "structural_elements"`, `"bld_num" INTEGER`, `"code" TEXT`, `UNIQUE ("acct", "bld_num", "code")`} {
		if !strings.Contains(ddl, want) {
			t.Fatalf("ddl missing %q:\n%s", want, ddl)
		}
	}

	p.execErr = errors.New("denied")
	if err := s.EnsureTable(context.Background(), testTable()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCreateTableSQL_NoUniqueWithoutFlag(t *testing.T) {
	tbl := testTable()
	tbl.Unique = false
	if strings.Contains(CreateTableSQL(tbl), "UNIQUE") {
		t.Fatalf("unexpected UNIQUE")
	}
}

func TestNew_UsesPoolHookAndClose(t *testing.T) {
	orig := newPool
	defer func() { newPool = orig }()

	fp := &fakePool{}
	newPool = func(ctx context.Context, dsn string) (poolLike, error) {
		if dsn != "postgres://x" {
			t.Fatalf("dsn = %q", dsn)
		}
		return fp, nil
	}

	s, err := store.Open(context.Background(), store.Config{Driver: "postgres", DSN: "postgres://x"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = s.Close()
	if !fp.closed {
		t.Fatalf("pool not closed")
	}

	if _, err := New(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
