package block

import (
	"fmt"

	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/internal/intern"
	"github.com/arloliu/nodepbf/osmpb"
)

// StringTable is the resolved, immutable string table of one primitive block.
type StringTable struct {
	strs []string
}

// NewStringTable converts the raw table entries to strings. When interner is
// non-nil, entries are shared with earlier blocks.
func NewStringTable(st *osmpb.StringTable, interner *intern.Table) *StringTable {
	if st == nil {
		return &StringTable{}
	}

	strs := make([]string, len(st.S))
	for i, s := range st.S {
		if interner != nil {
			strs[i] = interner.Intern(s)
		} else {
			strs[i] = string(s)
		}
	}

	return &StringTable{strs: strs}
}

// Lookup returns the string at idx.
func (t *StringTable) Lookup(idx int64) (string, error) {
	if idx < 0 || idx >= int64(len(t.strs)) {
		return "", fmt.Errorf("%w: index %d, table size %d", errs.ErrStringIndexOutOfRange, idx, len(t.strs))
	}

	return t.strs[idx], nil
}

// Len returns the number of entries.
func (t *StringTable) Len() int {
	return len(t.strs)
}
