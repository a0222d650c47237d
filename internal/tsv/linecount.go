package tsv

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// CountLines returns the number of data lines in path, excluding the header.
// A final line without a trailing newline is counted. The count is a
// best-effort input for progress reporting; callers treat an error as
// "total unknown".
func CountLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("count lines %s: %w", path, err)
	}
	defer f.Close()
	adviseSequential(f)

	buf := make([]byte, 1<<20)
	var (
		lines    int64
		lastByte byte = '\n'
		sawAny   bool
	)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			sawAny = true
			lines += int64(bytes.Count(buf[:n], []byte{'\n'}))
			lastByte = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("count lines %s: %w", path, err)
		}
	}
	if !sawAny {
		return 0, nil
	}
	if lastByte != '\n' {
		lines++
	}
	// First line is the header.
	if lines > 0 {
		lines--
	}
	return lines, nil
}
