package match

import "github.com/arloliu/nodepbf/entity"

// Matcher applies filter or discovery semantics to one node at a time.
//
// Both the plain and the dense node decoders consult the same Matcher before
// emitting a node.
type Matcher struct {
	filter     Filter
	vocab      *Vocabulary
	taggedOnly bool
}

// NewMatcher creates a Matcher. A nil or empty filter selects discovery mode,
// in which case vocab receives every pair (vocab may be nil to skip recording).
func NewMatcher(filter Filter, vocab *Vocabulary) *Matcher {
	return &Matcher{filter: filter, vocab: vocab}
}

// WithTaggedOnly makes discovery mode reject nodes without tags.
func (m *Matcher) WithTaggedOnly(enabled bool) *Matcher {
	m.taggedOnly = enabled
	return m
}

// Discovery reports whether the matcher is in discovery mode.
func (m *Matcher) Discovery() bool {
	return m.filter.IsEmpty()
}

// Match reports whether a node with tags is kept. In discovery mode it also
// records every pair in the vocabulary.
func (m *Matcher) Match(tags entity.Tags) bool {
	if m.Discovery() {
		if m.vocab != nil {
			for k, tv := range tags {
				for v := range tv.All() {
					m.vocab.Add(k, v)
				}
			}
		}

		return !m.taggedOnly || len(tags) > 0
	}

	for k, tv := range tags {
		set, ok := m.filter[k]
		if !ok {
			continue
		}
		if set.Has(Wildcard) {
			return true
		}
		for v := range tv.All() {
			if set.Has(v) {
				return true
			}
		}
	}

	return false
}
