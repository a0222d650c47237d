// Package sqlstore implements store.Store over database/sql for SQLite
// (modernc.org/sqlite), MySQL (go-sql-driver/mysql) and SQL Server
// (go-mssqldb). None of them has a COPY-style bulk path, so a batch is
// written as multi-row INSERT statements, chunked to the dialect's parameter
// limit, all inside one transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	mssql "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"countyloader/internal/store"
)

// Store is a database/sql backed store.Store.
type Store struct {
	db *sql.DB
	d  *dialect
}

var _ store.Store = (*Store)(nil)

func init() {
	for _, name := range []string{"sqlite", "mysql", "mssql"} {
		name := name
		store.Register(name, func(ctx context.Context, cfg store.Config) (store.Store, error) {
			return Open(ctx, name, cfg.DSN)
		})
	}
}

// Open connects to dsn with the named dialect ("sqlite", "mysql", "mssql")
// and pings it.
func Open(ctx context.Context, name, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: DSN must not be empty", name)
	}

	var (
		db  *sql.DB
		d   *dialect
		err error
	)
	switch name {
	case "sqlite":
		d = sqliteDialect
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			// One writer; also keeps ":memory:" databases on a single connection.
			db.SetMaxOpenConns(1)
		}
	case "mysql":
		d = mysqlDialect
		db, err = openMySQL(dsn)
	case "mssql":
		d = mssqlDialect
		db, err = openMSSQL(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: unknown dialect %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", name, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: ping: %w", name, err)
	}
	if name == "sqlite" {
		_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000")
	}
	return &Store{db: db, d: d}, nil
}

func openMySQL(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MultiStatements = false
	conn, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(conn), nil
}

func openMSSQL(dsn string) (*sql.DB, error) {
	conn, err := mssql.NewConnector(dsn)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(conn), nil
}

// InsertBatch writes rows as chunked multi-row INSERTs in one transaction.
func (s *Store) InsertBatch(ctx context.Context, t *store.Table, rows [][]any, c store.Conflict) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if c == store.ConflictDoNothing && len(t.Key) == 0 {
		return 0, fmt.Errorf("%s: table %s has no key for conflict handling", s.d.name, t.Name)
	}
	ncols := len(t.Columns)
	per := s.d.rowsPerStatement(ncols)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin: %w", s.d.name, err)
	}
	defer tx.Rollback()

	var written int64
	for start := 0; start < len(rows); start += per {
		end := start + per
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*ncols)
		for i, r := range chunk {
			if len(r) != ncols {
				return 0, fmt.Errorf("%s: row %d has %d values, table %s has %d columns", s.d.name, start+i, len(r), t.Name, ncols)
			}
			for _, v := range r {
				args = append(args, plain(v))
			}
		}

		res, err := tx.ExecContext(ctx, s.d.insert(s.d, t, len(chunk), c), args...)
		if err != nil {
			return 0, fmt.Errorf("%s: insert into %s: %w", s.d.name, t.Name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			written += n
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit %s: %w", s.d.name, t.Name, err)
	}
	return written, nil
}

// ExistingKeys streams the key columns of t cast to text.
func (s *Store) ExistingKeys(ctx context.Context, t *store.Table, fn func(key []string)) error {
	if len(t.Key) == 0 {
		return fmt.Errorf("%s: table %s has no key", s.d.name, t.Name)
	}
	sel := make([]string, len(t.Key))
	for i, k := range t.Key {
		sel[i] = s.d.textCast(s.d.quote(k))
	}
	q := "SELECT " + strings.Join(sel, ", ") + " FROM " + s.d.quote(t.Name)

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return fmt.Errorf("%s: query keys of %s: %w", s.d.name, t.Name, err)
	}
	defer rows.Close()

	vals := make([]sql.NullString, len(t.Key))
	dest := make([]any, len(t.Key))
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("%s: scan key of %s: %w", s.d.name, t.Name, err)
		}
		key := make([]string, len(vals))
		for i, v := range vals {
			key[i] = v.String
		}
		fn(key)
	}
	return rows.Err()
}

// EnsureTable creates t if it does not exist.
func (s *Store) EnsureTable(ctx context.Context, t *store.Table) error {
	if _, err := s.db.ExecContext(ctx, s.d.createTableSQL(t)); err != nil {
		return fmt.Errorf("%s: create table %s: %w", s.d.name, t.Name, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle, mainly for tests and ad-hoc checks.
func (s *Store) DB() *sql.DB { return s.db }

// plain dereferences the nullable pointer types used by domain records so
// every driver sees a basic value.
func plain(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *int:
		if x == nil {
			return nil
		}
		return int64(*x)
	case int:
		return int64(x)
	default:
		return v
	}
}
