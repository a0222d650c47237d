package tsv

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeTemp writes s to a temp file and returns the path.
func writeTemp(t *testing.T, s string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "src.txt")
	if err := os.WriteFile(p, []byte(s), 0o644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return p
}

// readAll drains r and returns the rows it produced.
func readAll(t *testing.T, r *Reader) []Row {
	t.Helper()
	var rows []Row
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		rows = append(rows, row)
	}
}

// TestOpen_HeaderExcludedAndRowsSplit covers the basic contract: the header
// is consumed once and every later line becomes a tab-split row.
func TestOpen_HeaderExcludedAndRowsSplit(t *testing.T) {
	p := writeTemp(t, "acct\tcd\tdscr\n123\tA\tFoo\n\tB\tBar\n")
	r, err := Open(p, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if got, want := r.Header(), []string{"acct", "cd", "dscr"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("header = %v, want %v", got, want)
	}
	rows := readAll(t, r)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if !reflect.DeepEqual(rows[0].Fields, []string{"123", "A", "Foo"}) || rows[0].Line != 2 {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if !reflect.DeepEqual(rows[1].Fields, []string{"", "B", "Bar"}) || rows[1].Line != 3 {
		t.Fatalf("row 1 = %+v", rows[1])
	}
}

// TestOpen_CRLFAndNoTrailingNewline ensures CRLF terminators are stripped and
// the last line is returned even without a newline.
func TestOpen_CRLFAndNoTrailingNewline(t *testing.T) {
	p := writeTemp(t, "acct\tcd\r\n1\tX\r\n2\tY")
	r, err := Open(p, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	rows := readAll(t, r)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Fields[1] != "X" || rows[1].Fields[1] != "Y" {
		t.Fatalf("CR not stripped: %q %q", rows[0].Fields[1], rows[1].Fields[1])
	}
}

// TestOpen_HeaderTrimmedFilteredAndBOM covers header normalization.
func TestOpen_HeaderTrimmedFilteredAndBOM(t *testing.T) {
	p := writeTemp(t, "\uFEFF acct \t\tNeighborhood_Code \t\n")
	r, err := Open(p, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if got, want := r.Header(), []string{"acct", "Neighborhood_Code"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("header = %q, want %q", got, want)
	}
	if rows := readAll(t, r); len(rows) != 0 {
		t.Fatalf("expected no data rows, got %d", len(rows))
	}
}

// TestOpen_ShortRowDoesNotFail checks that fewer fields than the header is
// tolerated by the reader.
func TestOpen_ShortRowDoesNotFail(t *testing.T) {
	p := writeTemp(t, "a\tb\tc\td\n1\t2\n")
	r, err := Open(p, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	rows := readAll(t, r)
	if len(rows) != 1 || len(rows[0].Fields) != 2 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	p := writeTemp(t, "")
	r, err := Open(p, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if len(r.Header()) != 0 {
		t.Fatalf("header = %v", r.Header())
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next on empty = %v, want EOF", err)
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.txt"), Options{}); err == nil {
		t.Fatalf("expected error")
	}
}

// TestOpen_LongLine exercises lines longer than the bufio buffer.
func TestOpen_LongLine(t *testing.T) {
	long := strings.Repeat("x", readBufferBytes+10)
	p := writeTemp(t, "acct\tnote\n1\t"+long+"\n")
	r, err := Open(p, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	rows := readAll(t, r)
	if len(rows) != 1 || len(rows[0].Fields[1]) != len(long) {
		t.Fatalf("long line not reassembled")
	}
}

// TestOpen_Windows1252 verifies decoding of single-byte county exports.
func TestOpen_Windows1252(t *testing.T) {
	// 0xE9 is 'é' in Windows-1252.
	p := writeTemp(t, "acct\tname\n1\tCaf\xe9\n")
	r, err := Open(p, Options{Encoding: "windows-1252"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	rows := readAll(t, r)
	if len(rows) != 1 || rows[0].Fields[1] != "Café" {
		t.Fatalf("decoded = %+v", rows)
	}
}

func TestOpen_UnknownEncoding(t *testing.T) {
	p := writeTemp(t, "acct\n")
	if _, err := Open(p, Options{Encoding: "ebcdic"}); err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		name string
		body string
		want int64
	}{
		{"empty", "", 0},
		{"header only", "a\tb\n", 0},
		{"header only no newline", "a\tb", 0},
		{"two rows", "a\n1\n2\n", 2},
		{"no trailing newline", "a\n1\n2", 2},
		{"crlf", "a\r\n1\r\n", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CountLines(writeTemp(t, tc.body))
			if err != nil {
				t.Fatalf("CountLines: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

// TestCountLines_MatchesReader guards the header-exclusion property: a
// 101-line file yields 100 data rows from both the counter and the reader.
func TestCountLines_MatchesReader(t *testing.T) {
	var b strings.Builder
	b.WriteString("acct\tcd\n")
	for i := 0; i < 100; i++ {
		b.WriteString("1\tA\n")
	}
	p := writeTemp(t, b.String())

	n, err := CountLines(p)
	if err != nil || n != 100 {
		t.Fatalf("CountLines = %d, %v", n, err)
	}
	r, err := Open(p, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if rows := readAll(t, r); len(rows) != 100 {
		t.Fatalf("reader rows = %d", len(rows))
	}
}

func TestCountLines_MissingFile(t *testing.T) {
	if _, err := CountLines(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error")
	}
}
