package sqlstore

import (
	"fmt"
	"strings"

	"countyloader/internal/store"
)

// dialect captures the SQL differences between the database/sql backends.
type dialect struct {
	name string
	// maxParams is the bind-parameter limit of one statement; maxRows caps
	// the rows of one VALUES list (0 = no cap).
	maxParams int
	maxRows   int

	quote       func(ident string) string
	placeholder func(n int) string // 1-based
	textCast    func(expr string) string
	keyType     string // type of Text columns that are part of the key
	textType    string
	intType     string
	idColumn    string
	createWrap  func(table, body string) string
	insert      func(d *dialect, t *store.Table, nrows int, c store.Conflict) string
}

var sqliteDialect = &dialect{
	name:        "sqlite",
	maxParams:   32766,
	quote:       func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` },
	placeholder: func(int) string { return "?" },
	textCast:    func(e string) string { return "CAST(" + e + " AS TEXT)" },
	keyType:     "TEXT",
	textType:    "TEXT",
	intType:     "INTEGER",
	idColumn:    "id INTEGER PRIMARY KEY AUTOINCREMENT",
	createWrap: func(table, body string) string {
		return "CREATE TABLE IF NOT EXISTS " + table + " (\n" + body + "\n)"
	},
	insert: func(d *dialect, t *store.Table, n int, c store.Conflict) string {
		q := valuesInsert(d, t, n)
		if c == store.ConflictDoNothing {
			q += " ON CONFLICT (" + strings.Join(d.quoteAll(t.Key), ", ") + ") DO NOTHING"
		}
		return q
	},
}

var mysqlDialect = &dialect{
	name:        "mysql",
	maxParams:   65535,
	quote:       func(s string) string { return "`" + strings.ReplaceAll(s, "`", "``") + "`" },
	placeholder: func(int) string { return "?" },
	textCast:    func(e string) string { return "CAST(" + e + " AS CHAR)" },
	keyType:     "VARCHAR(64)",
	textType:    "TEXT",
	intType:     "INT",
	idColumn:    "id BIGINT AUTO_INCREMENT PRIMARY KEY",
	createWrap: func(table, body string) string {
		return "CREATE TABLE IF NOT EXISTS " + table + " (\n" + body + "\n)"
	},
	insert: func(d *dialect, t *store.Table, n int, c store.Conflict) string {
		q := valuesInsert(d, t, n)
		if c == store.ConflictDoNothing {
			k := d.quote(t.Key[0])
			q += " ON DUPLICATE KEY UPDATE " + k + " = " + k
		}
		return q
	},
}

var mssqlDialect = &dialect{
	name:        "mssql",
	maxParams:   2100 - 1,
	maxRows:     1000,
	quote:       func(s string) string { return "[" + strings.ReplaceAll(s, "]", "]]") + "]" },
	placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
	textCast:    func(e string) string { return "CAST(" + e + " AS NVARCHAR(4000))" },
	keyType:     "NVARCHAR(64)",
	textType:    "NVARCHAR(MAX)",
	intType:     "INT",
	idColumn:    "id BIGINT IDENTITY(1,1) PRIMARY KEY",
	createWrap: func(table, body string) string {
		return "IF OBJECT_ID(N'" + strings.Trim(table, "[]") + "', N'U') IS NULL\nCREATE TABLE " + table + " (\n" + body + "\n)"
	},
	insert: func(d *dialect, t *store.Table, n int, c store.Conflict) string {
		if c != store.ConflictDoNothing {
			return valuesInsert(d, t, n)
		}
		return mssqlInsertMissing(d, t, n)
	},
}

func (d *dialect) quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = d.quote(n)
	}
	return out
}

// rowsPerStatement is the largest row count whose parameters fit one statement.
func (d *dialect) rowsPerStatement(ncols int) int {
	if ncols <= 0 {
		return 1
	}
	n := d.maxParams / ncols
	if d.maxRows > 0 && n > d.maxRows {
		n = d.maxRows
	}
	if n < 1 {
		n = 1
	}
	return n
}

// valuesList renders "(p1, p2), (p3, p4)" for n rows.
func (d *dialect) valuesList(ncols, nrows int) string {
	var b strings.Builder
	p := 1
	for r := 0; r < nrows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := 0; c < ncols; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.placeholder(p))
			p++
		}
		b.WriteByte(')')
	}
	return b.String()
}

func valuesInsert(d *dialect, t *store.Table, n int) string {
	cols := t.ColumnNames()
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		d.quote(t.Name), strings.Join(d.quoteAll(cols), ", "), d.valuesList(len(cols), n))
}

// mssqlInsertMissing inserts only rows whose key is absent, keeping the first
// of any duplicates inside the batch.
func mssqlInsertMissing(d *dialect, t *store.Table, n int) string {
	cols := d.quoteAll(t.ColumnNames())
	colList := strings.Join(cols, ", ")
	keys := d.quoteAll(t.Key)

	match := make([]string, len(keys))
	for i, k := range keys {
		match[i] = "t." + k + " = s." + k
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM ("+
			"SELECT v.*, ROW_NUMBER() OVER (PARTITION BY %s ORDER BY (SELECT 0)) AS rn FROM (VALUES %s) AS v (%s)"+
			") AS s WHERE s.rn = 1 AND NOT EXISTS (SELECT 1 FROM %s AS t WHERE %s)",
		d.quote(t.Name), colList, prefixAll("s.", cols),
		prefixAll("v.", keys), d.valuesList(len(cols), n), colList,
		d.quote(t.Name), strings.Join(match, " AND "),
	)
}

func prefixAll(p string, xs []string) string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = p + x
	}
	return strings.Join(out, ", ")
}

// createTableSQL renders the dialect's create-if-missing statement for t.
func (d *dialect) createTableSQL(t *store.Table) string {
	isKey := make(map[string]bool, len(t.Key))
	for _, k := range t.Key {
		isKey[k] = true
	}

	lines := []string{"\t" + d.idColumn}
	for _, c := range t.Columns {
		typ := d.textType
		switch {
		case c.Type == store.Integer:
			typ = d.intType
		case isKey[c.Name]:
			typ = d.keyType
		}
		lines = append(lines, "\t"+d.quote(c.Name)+" "+typ)
	}
	if t.Unique && len(t.Key) > 0 {
		lines = append(lines, "\tCONSTRAINT "+d.quote("uq_"+t.Name)+" UNIQUE ("+strings.Join(d.quoteAll(t.Key), ", ")+")")
	}
	return d.createWrap(d.quote(t.Name), strings.Join(lines, ",\n"))
}
