package importer

import (
	"strings"

	"github.com/zeebo/xxh3"
)

// keySep joins key parts before hashing. It cannot occur in a tab-split,
// sanitized field.
const keySep = "\x1f"

// keySet holds 64-bit xxh3 hashes of business keys instead of the keys
// themselves. A collision can only cause a false "already exists".
type keySet map[uint64]struct{}

func hashKey(parts []string) uint64 {
	if len(parts) == 1 {
		return xxh3.HashString(parts[0])
	}
	return xxh3.HashString(strings.Join(parts, keySep))
}

func (s keySet) Add(parts []string) { s[hashKey(parts)] = struct{}{} }

func (s keySet) Has(parts []string) bool {
	_, ok := s[hashKey(parts)]
	return ok
}
