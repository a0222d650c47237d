// Package datadrop locates the most recent county data drop. A data drop is a
// directory named YYYY-MM-DD_HH-MM-SS under a common base directory; only the
// latest one is read per run.
package datadrop

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// ErrNoDataFolder is returned when the base directory holds no directory
// whose name matches the data drop timestamp pattern.
var ErrNoDataFolder = errors.New("no data folder found")

// folderRe matches data drop directory names, e.g. 2024-06-15_10-30-00.
var folderRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}$`)

// Order selects how "latest" is decided among candidate directories.
type Order int

const (
	// ByName sorts names descending. The fixed-width timestamp makes this a
	// chronological sort that does not depend on filesystem metadata.
	ByName Order = iota
	// ByModTime sorts by modification time descending, name descending on ties.
	ByModTime
)

// ParseOrder maps the config spelling ("name", "mtime") to an Order.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return ByName, nil
	case "mtime", "modtime":
		return ByModTime, nil
	default:
		return ByName, fmt.Errorf("unknown data drop order %q", s)
	}
}

func (o Order) String() string {
	if o == ByModTime {
		return "mtime"
	}
	return "name"
}

// IsDropName reports whether name looks like a data drop directory.
func IsDropName(name string) bool { return folderRe.MatchString(name) }

type candidate struct {
	name    string
	modTime time.Time
}

// Latest returns the path of the latest data drop directory under baseDir.
func Latest(baseDir string, by Order) (string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return "", fmt.Errorf("read data dir %s: %w", baseDir, err)
	}

	var cands []candidate
	for _, e := range entries {
		if !e.IsDir() || !IsDropName(e.Name()) {
			continue
		}
		c := candidate{name: e.Name()}
		if by == ByModTime {
			info, err := e.Info()
			if err != nil {
				return "", fmt.Errorf("stat %s: %w", e.Name(), err)
			}
			c.modTime = info.ModTime()
		}
		cands = append(cands, c)
	}
	if len(cands) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoDataFolder, baseDir)
	}

	sort.Slice(cands, func(i, j int) bool {
		if by == ByModTime && !cands[i].modTime.Equal(cands[j].modTime) {
			return cands[i].modTime.After(cands[j].modTime)
		}
		return cands[i].name > cands[j].name
	})
	return filepath.Join(baseDir, cands[0].name), nil
}

// Resolve returns the absolute path of fileName inside the latest data drop.
// The file itself is not required to exist yet.
func Resolve(baseDir, fileName string, by Order) (string, error) {
	dir, err := Latest(baseDir, by)
	if err != nil {
		return "", err
	}
	p, err := filepath.Abs(filepath.Join(dir, fileName))
	if err != nil {
		return "", fmt.Errorf("absolute path for %s: %w", fileName, err)
	}
	log.Printf("data drop: using %s", p)
	return p, nil
}
