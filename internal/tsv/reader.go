// Package tsv streams tab-delimited county files. The first line of every
// file is a header; each following line is split on tabs into raw fields.
//
// County exports are not quoted TSV: a tab always separates fields and a
// field never contains a newline, so no quote handling is attempted.
package tsv

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const readBufferBytes = 4 << 20 // 4 MiB; county rows are short but files are large.

// Options controls how a source file is decoded.
type Options struct {
	// Encoding of the source bytes: "utf-8" (default), "windows-1252"/"cp1252",
	// or "latin1"/"iso-8859-1".
	Encoding string
}

// Row is one data line of a source file.
type Row struct {
	Line   int      // 1-based physical line number; the header is line 1
	Fields []string // tab-separated raw values, untrimmed
	Raw    string   // the line without its terminator
}

// Reader yields data rows after the header line.
type Reader struct {
	f      *os.File
	br     *bufio.Reader
	header []string
	line   int
}

// Open opens path, consumes its header line and returns a Reader positioned
// on the first data line. An empty file yields an empty header and a Reader
// that returns io.EOF immediately.
func Open(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	src, err := decoder(f, opts.Encoding)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r := &Reader{f: f, br: bufio.NewReaderSize(src, readBufferBytes)}

	headerLine, err := readPhysicalLine(r.br)
	if err != nil && err != io.EOF {
		_ = f.Close()
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	if err == nil {
		r.line = 1
		r.header = ParseHeader(trimBOM(headerLine))
	}
	return r, nil
}

// Header returns the trimmed, non-empty column names of the header line.
func (r *Reader) Header() []string { return r.header }

// Next returns the next data row or io.EOF when the file is exhausted.
func (r *Reader) Next() (Row, error) {
	s, err := readPhysicalLine(r.br)
	if err != nil {
		return Row{}, err
	}
	r.line++
	return Row{Line: r.line, Fields: Split(s), Raw: s}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error { return r.f.Close() }

// Split splits one line into its tab-separated fields.
func Split(line string) []string {
	return strings.Split(line, "\t")
}

// ParseHeader splits a header line, trims each name and drops empty names.
func ParseHeader(line string) []string {
	parts := Split(line)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readPhysicalLine reads a single physical line, tolerating both LF and CRLF.
// A final line without a terminator is returned with a nil error.
func readPhysicalLine(r *bufio.Reader) (string, error) {
	var b bytes.Buffer
	for {
		part, isPrefix, err := r.ReadLine()
		if err != nil {
			if err == io.EOF && b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		b.Write(part)
		if !isPrefix {
			return b.String(), nil
		}
	}
}

// trimBOM removes a leading UTF-8 BOM (if present) from s.
func trimBOM(s string) string {
	if strings.HasPrefix(s, "\uFEFF") {
		_, i := utf8.DecodeRuneInString(s)
		return s[i:]
	}
	return s
}

func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported source encoding %q", encoding)
	}
}
