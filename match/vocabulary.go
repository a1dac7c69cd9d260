package match

import "sort"

// Vocabulary accumulates every distinct tag key/value pair seen in discovery mode.
//
// Its lifetime is controlled by the caller: it persists across parses until
// Reset is called.
//
// Note: Vocabulary is NOT thread-safe. Concurrent parses sharing one Vocabulary
// must synchronise externally.
type Vocabulary struct {
	keys  map[string]ValueSet
	pairs int
}

// NewVocabulary creates an empty Vocabulary.
func NewVocabulary() *Vocabulary {
	return &Vocabulary{keys: make(map[string]ValueSet)}
}

// Add records one key/value pair.
func (v *Vocabulary) Add(key, value string) {
	set, ok := v.keys[key]
	if !ok {
		set = make(ValueSet)
		v.keys[key] = set
	}
	if _, seen := set[value]; !seen {
		set[value] = struct{}{}
		v.pairs++
	}
}

// Contains reports whether the pair has been recorded.
func (v *Vocabulary) Contains(key, value string) bool {
	return v.keys[key].Has(value)
}

// Keys returns every recorded key in ascending order.
func (v *Vocabulary) Keys() []string {
	out := make([]string, 0, len(v.keys))
	for k := range v.keys {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

// Values returns the recorded values of key in ascending order.
func (v *Vocabulary) Values(key string) []string {
	set, ok := v.keys[key]
	if !ok {
		return nil
	}

	return set.Sorted()
}

// Len returns the number of distinct key/value pairs.
func (v *Vocabulary) Len() int {
	return v.pairs
}

// IsEmpty reports whether nothing has been recorded.
func (v *Vocabulary) IsEmpty() bool {
	return v.pairs == 0
}

// Snapshot returns a deep copy of the key -> values mapping.
func (v *Vocabulary) Snapshot() map[string]ValueSet {
	out := make(map[string]ValueSet, len(v.keys))
	for k, set := range v.keys {
		cp := make(ValueSet, len(set))
		for val := range set {
			cp[val] = struct{}{}
		}
		out[k] = cp
	}

	return out
}

// Merge records every pair of other.
func (v *Vocabulary) Merge(other *Vocabulary) {
	for k, set := range other.keys {
		for val := range set {
			v.Add(k, val)
		}
	}
}

// Reset drops every recorded pair.
func (v *Vocabulary) Reset() {
	clear(v.keys)
	v.pairs = 0
}
