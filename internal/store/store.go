// Package store defines the destination-table abstraction used by the
// loaders, plus a small factory so backends can register themselves by
// driver name. Concrete backends live in subpackages and register in init;
// import countyloader/internal/store/all to link every backend.
//
// Every InsertBatch call is a single transaction: either all rows of the
// batch are committed or none are.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ColumnType is the portable SQL type of a destination column.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
)

// Column is one destination column.
type Column struct {
	Name string
	Type ColumnType
}

// Table describes a destination table.
type Table struct {
	Name    string
	Columns []Column
	// Key lists the business-key columns. They are used for ON CONFLICT
	// targets and for ExistingKeys.
	Key []string
	// Unique makes EnsureTable declare a uniqueness constraint on Key.
	// Tables written with ConflictDoNothing need it.
	Unique bool
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// TextColumns builds a Table column list where every column is Text except
// the ones named in ints.
func TextColumns(names []string, ints ...string) []Column {
	isInt := make(map[string]bool, len(ints))
	for _, n := range ints {
		isInt[n] = true
	}
	out := make([]Column, len(names))
	for i, n := range names {
		out[i] = Column{Name: n, Type: Text}
		if isInt[n] {
			out[i].Type = Integer
		}
	}
	return out
}

// Conflict is the write policy for rows whose business key already exists.
type Conflict int

const (
	// ConflictNone issues a plain insert; duplicates are the caller's concern.
	ConflictNone Conflict = iota
	// ConflictDoNothing silently ignores rows whose key already exists.
	ConflictDoNothing
)

func (c Conflict) String() string {
	if c == ConflictDoNothing {
		return "do-nothing"
	}
	return "none"
}

// Store writes batches to destination tables.
type Store interface {
	// InsertBatch writes rows (ordered as t.Columns) in one transaction and
	// returns the number of rows the store reports as written.
	InsertBatch(ctx context.Context, t *Table, rows [][]any, c Conflict) (int64, error)
	// ExistingKeys streams every key tuple currently in t. NULL key parts
	// are reported as "".
	ExistingKeys(ctx context.Context, t *Table, fn func(key []string)) error
	// EnsureTable creates t when it does not exist.
	EnsureTable(ctx context.Context, t *Table) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver string // registered backend name, e.g. "postgres"
	DSN    string
}

// Factory opens a Store for a Config.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for driver.
func Register(driver string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[strings.ToLower(driver)] = f
}

// Open returns a Store for cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	mu.RLock()
	f, ok := factories[strings.ToLower(cfg.Driver)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: unsupported driver %q (registered: %s)", cfg.Driver, strings.Join(Drivers(), ", "))
	}
	return f(ctx, cfg)
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
