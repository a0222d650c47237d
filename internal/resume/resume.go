// Package resume persists the set of source files a resumable pipeline has
// fully ingested, so a restarted run can skip them.
//
// The log is a JSON array of absolute paths. It is read once when loaded and
// rewritten in full after every MarkProcessed.
package resume

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Log is the in-memory processed-files set backed by a JSON file.
type Log struct {
	path string

	mu   sync.Mutex
	done map[string]struct{}
}

// Load reads the log at path. A missing file yields an empty log; an
// unreadable or malformed file yields an empty log and a warning.
func Load(path string) *Log {
	l := &Log{path: path, done: make(map[string]struct{})}

	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("⚠️ resume: read %s: %v (starting fresh)", path, err)
		}
		return l
	}
	var paths []string
	if err := json.Unmarshal(b, &paths); err != nil {
		log.Printf("⚠️ resume: parse %s: %v (starting fresh)", path, err)
		return l
	}
	for _, p := range paths {
		l.done[normalize(p)] = struct{}{}
	}
	return l
}

// Path is the backing file.
func (l *Log) Path() string { return l.path }

// Has reports whether file was marked processed.
func (l *Log) Has(file string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.done[normalize(file)]
	return ok
}

// Len is the number of processed files.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.done)
}

// MarkProcessed records file and rewrites the log. The in-memory entry is
// kept even when persisting fails; the write error is returned for logging.
func (l *Log) MarkProcessed(file string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.done[normalize(file)] = struct{}{}
	return l.writeLocked()
}

func (l *Log) writeLocked() error {
	paths := make([]string, 0, len(l.done))
	for p := range l.done {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	b, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		return fmt.Errorf("resume: encode: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("resume: create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("resume: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("resume: write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("resume: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("resume: replace %s: %w", l.path, err)
	}
	return nil
}

// normalize makes paths absolute and clean so that the same file reached via
// different relative paths matches one entry.
func normalize(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
