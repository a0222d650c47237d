// Package postgres implements store.Store on PostgreSQL using pgx v5.
//
// Plain inserts use COPY FROM straight into the destination table. Do-nothing
// inserts COPY into an ON COMMIT DROP temp table and then run
// INSERT ... SELECT ... ON CONFLICT (key) DO NOTHING, so COPY speed is kept
// while the store absorbs duplicate keys. Both paths run inside one
// transaction per batch.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"countyloader/internal/store"
)

// poolLike is the subset of *pgxpool.Pool the store uses. Tests inject a fake.
type poolLike interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store is the PostgreSQL backend.
type Store struct {
	pool poolLike
}

var _ store.Store = (*Store)(nil)

// newPool is a test hook for the pool constructor.
var newPool = func(ctx context.Context, dsn string) (poolLike, error) {
	return pgxpool.New(ctx, dsn)
}

func init() {
	store.Register("postgres", func(ctx context.Context, cfg store.Config) (store.Store, error) {
		return New(ctx, cfg.DSN)
	})
}

// New opens a connection pool for dsn and verifies connectivity.
func New(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres: DSN must not be empty")
	}
	p, err := newPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if pinger, ok := p.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			p.Close()
			return nil, fmt.Errorf("postgres: ping: %w", err)
		}
	}
	return &Store{pool: p}, nil
}

// InsertBatch writes rows in a single transaction.
func (s *Store) InsertBatch(ctx context.Context, t *store.Table, rows [][]any, c store.Conflict) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols := t.ColumnNames()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var n int64
	switch c {
	case store.ConflictDoNothing:
		n, err = copyDoNothing(ctx, tx, t, cols, rows)
	default:
		n, err = tx.CopyFrom(ctx, pgx.Identifier{t.Name}, cols, pgx.CopyFromRows(rows))
		if err != nil {
			err = fmt.Errorf("copy into %s: %w", t.Name, describe(err))
		}
	}
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit %s: %w", t.Name, err)
	}
	return n, nil
}

// copyDoNothing stages rows in a temp table and inserts the ones whose key
// is not present yet. It returns the number of rows actually inserted.
func copyDoNothing(ctx context.Context, tx pgx.Tx, t *store.Table, cols []string, rows [][]any) (int64, error) {
	if len(t.Key) == 0 {
		return 0, fmt.Errorf("postgres: table %s has no key for ON CONFLICT", t.Name)
	}
	tmp := "tmp_" + t.Name
	colList := strings.Join(mapIdent(cols), ", ")

	create := fmt.Sprintf(
		"CREATE TEMP TABLE %s ON COMMIT DROP AS SELECT %s FROM %s WHERE false",
		pgIdent(tmp), colList, pgIdent(t.Name),
	)
	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("create temp %s: %w", tmp, err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{tmp}, cols, pgx.CopyFromRows(rows)); err != nil {
		return 0, fmt.Errorf("copy into temp %s: %w", tmp, describe(err))
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO NOTHING",
		pgIdent(t.Name), colList, colList, pgIdent(tmp), strings.Join(mapIdent(t.Key), ", "),
	)
	tag, err := tx.Exec(ctx, insert)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", t.Name, describe(err))
	}
	return tag.RowsAffected(), nil
}

// ExistingKeys streams the key columns of t, cast to text.
func (s *Store) ExistingKeys(ctx context.Context, t *store.Table, fn func(key []string)) error {
	if len(t.Key) == 0 {
		return fmt.Errorf("postgres: table %s has no key", t.Name)
	}
	sel := make([]string, len(t.Key))
	for i, k := range t.Key {
		sel[i] = pgIdent(k) + "::text"
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(sel, ", "), pgIdent(t.Name))

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return fmt.Errorf("postgres: query keys of %s: %w", t.Name, err)
	}
	defer rows.Close()

	vals := make([]*string, len(t.Key))
	dest := make([]any, len(t.Key))
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("postgres: scan key of %s: %w", t.Name, err)
		}
		key := make([]string, len(vals))
		for i, v := range vals {
			if v != nil {
				key[i] = *v
			}
		}
		fn(key)
	}
	return rows.Err()
}

// EnsureTable creates t if it does not exist.
func (s *Store) EnsureTable(ctx context.Context, t *store.Table) error {
	if _, err := s.pool.Exec(ctx, CreateTableSQL(t)); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", t.Name, err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// CreateTableSQL renders the CREATE TABLE IF NOT EXISTS statement for t.
func CreateTableSQL(t *store.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", pgIdent(t.Name))
	b.WriteString("\tid BIGSERIAL PRIMARY KEY")
	for _, c := range t.Columns {
		typ := "TEXT"
		if c.Type == store.Integer {
			typ = "INTEGER"
		}
		fmt.Fprintf(&b, ",\n\t%s %s", pgIdent(c.Name), typ)
	}
	if t.Unique && len(t.Key) > 0 {
		fmt.Fprintf(&b, ",\n\tUNIQUE (%s)", strings.Join(mapIdent(t.Key), ", "))
	}
	b.WriteString("\n)")
	return b.String()
}

// describe adds the server-side detail of a PgError to its message.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%w (%s)", err, pgErr.Detail)
	}
	return err
}

func pgIdent(s string) string {
	return pgx.Identifier{s}.Sanitize()
}

func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgIdent(c)
	}
	return out
}
