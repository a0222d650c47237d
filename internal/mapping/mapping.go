// Package mapping turns raw tab-split fields into typed domain records.
//
// Two addressing styles are supported. Positional mappers read fixed column
// indexes and are used for the large, stable layouts (real_acct,
// structural_elem). Header-indexed mappers resolve columns by name through a
// HeaderIndex, tolerating case and spelling drift in the county headers.
//
// Every mapper is pure: no I/O, no logging. A mapper returns ok=false when the
// row lacks its business key; the caller decides how to account for it.
package mapping

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field returns the trimmed, sanitized value at index i, or "" when the row is
// shorter than i+1 fields.
func Field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return Clean(fields[i])
}

// Optional returns nil for a blank value and a pointer to the trimmed value
// otherwise.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Int parses the leading base-10 integer of s. A fractional part or a
// space-separated tail is ignored ("2019.0" and "12 5" give 2019 and 12);
// any other trailing character, or no digits at all, yields nil.
func Int(s string) *int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}
	if end < len(s) && s[end] != '.' && s[end] != ' ' && s[end] != '\t' {
		return nil
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return nil
	}
	return &v
}

// Clean trims s and strips bytes PostgreSQL TEXT cannot hold: NUL and other
// control characters are removed and invalid UTF-8 is replaced with U+FFFD.
func Clean(s string) string {
	if needsSanitize(s) {
		t := transform.Chain(runes.ReplaceIllFormed(), runes.Remove(runes.Predicate(isControl)))
		if out, _, err := transform.String(t, s); err == nil {
			s = out
		}
	}
	return strings.TrimSpace(s)
}

func isControl(r rune) bool { return r < 0x20 || r == 0x7f }

func needsSanitize(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c == 0x7f {
			return true
		}
	}
	return !utf8.ValidString(s)
}

// HeaderIndex resolves column positions by canonical header name.
type HeaderIndex struct {
	pos  map[string]int
	size int
}

// NewHeaderIndex indexes header. When two columns canonicalize to the same
// name the first one wins.
func NewHeaderIndex(header []string) *HeaderIndex {
	h := &HeaderIndex{pos: make(map[string]int, len(header)), size: len(header)}
	for i, name := range header {
		c := Canonical(name)
		if c == "" {
			continue
		}
		if _, dup := h.pos[c]; !dup {
			h.pos[c] = i
		}
	}
	return h
}

// Len reports the number of header columns.
func (h *HeaderIndex) Len() int { return h.size }

// Has reports whether any of names is present in the header.
func (h *HeaderIndex) Has(names ...string) bool {
	_, ok := h.index(names)
	return ok
}

// Get returns the cleaned value of the first of names present in the header.
// Values beyond the header length are ignored, and a missing column or a
// short row yields "".
func (h *HeaderIndex) Get(fields []string, names ...string) string {
	i, ok := h.index(names)
	if !ok {
		return ""
	}
	return Field(fields, i)
}

func (h *HeaderIndex) index(names []string) (int, bool) {
	if h == nil {
		return 0, false
	}
	for _, n := range names {
		if i, ok := h.pos[Canonical(n)]; ok && i < h.size {
			return i, true
		}
	}
	return 0, false
}

// Canonical folds a header name to lower-case ASCII-ish snake case:
// accents are stripped, every run of non-alphanumerics becomes "_", and
// leading or trailing "_" are dropped. "Neighborhood_Code",
// "neighborhood code" and "NEIGHBORHOOD-CODE" all become "neighborhood_code".
func Canonical(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, name); err == nil {
		name = out
	}

	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
