// Package intern deduplicates string table entries across primitive blocks.
//
// Every primitive block carries its own string table, yet the same keys and
// common values ("highway", "yes", "name") recur in every block of a file.
// Table maps the xxHash64 of the raw bytes to a single shared string so that
// decoded tags reference one allocation per distinct string.
package intern

import "github.com/arloliu/nodepbf/internal/hash"

// DefaultMaxEntries bounds the number of distinct strings retained by a Table.
const DefaultMaxEntries = 1 << 16

// Table is a hash-keyed string interner.
//
// A hash collision (different bytes, same hash) never returns the wrong string:
// the colliding input gets a fresh allocation and the collision is counted.
//
// Note: Table is NOT thread-safe.
type Table struct {
	strings    map[uint64]string
	maxEntries int
	collisions int
	hashFn     func([]byte) uint64
}

// NewTable creates a Table holding at most maxEntries strings; maxEntries <= 0 means unbounded.
func NewTable(maxEntries int) *Table {
	return &Table{
		strings:    make(map[uint64]string),
		maxEntries: maxEntries,
		hashFn:     hash.ID,
	}
}

// Intern returns a string equal to b, shared with earlier calls for the same bytes.
func (t *Table) Intern(b []byte) string {
	h := t.hashFn(b)
	if s, ok := t.strings[h]; ok {
		if s == string(b) {
			return s
		}
		t.collisions++

		return string(b)
	}

	s := string(b)
	if t.maxEntries <= 0 || len(t.strings) < t.maxEntries {
		t.strings[h] = s
	}

	return s
}

// Len returns the number of retained strings.
func (t *Table) Len() int {
	return len(t.strings)
}

// Collisions returns the number of hash collisions seen since creation or Reset.
func (t *Table) Collisions() int {
	return t.collisions
}

// Reset drops every retained string.
func (t *Table) Reset() {
	clear(t.strings)
	t.collisions = 0
}
