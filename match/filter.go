package match

import "sort"

// Wildcard accepts any value for a key.
const Wildcard = "*"

// ValueSet is a set of tag values.
type ValueSet map[string]struct{}

// NewValueSet creates a set holding values.
func NewValueSet(values ...string) ValueSet {
	s := make(ValueSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}

	return s
}

// Has reports whether v is in the set.
func (s ValueSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the values in ascending order.
func (s ValueSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)

	return out
}

// Filter maps a tag key to the set of accepted values.
type Filter map[string]ValueSet

// NewFilter builds a Filter from key -> accepted values.
func NewFilter(accepted map[string][]string) Filter {
	f := make(Filter, len(accepted))
	for k, values := range accepted {
		f.Add(k, values...)
	}

	return f
}

// Add accepts values for key, in addition to any values already accepted.
func (f Filter) Add(key string, values ...string) Filter {
	set, ok := f[key]
	if !ok {
		set = make(ValueSet, len(values))
		f[key] = set
	}
	for _, v := range values {
		set[v] = struct{}{}
	}

	return f
}

// IsEmpty reports whether the filter selects discovery mode.
func (f Filter) IsEmpty() bool {
	return len(f) == 0
}

// Accepts reports whether the filter accepts value for key.
func (f Filter) Accepts(key, value string) bool {
	set, ok := f[key]
	if !ok {
		return false
	}

	return set.Has(Wildcard) || set.Has(value)
}
