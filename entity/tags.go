package entity

import "iter"

// TagValue is the value side of a tag.
//
// Most keys occur once per node and hold a single value. A key repeated on the
// same node holds every value in insertion order; the representation switches
// when the second value for the key is added.
type TagValue struct {
	single string
	multi  []string
}

// NewTagValue creates a single-valued TagValue.
func NewTagValue(v string) TagValue {
	return TagValue{single: v}
}

// IsMulti reports whether the key was repeated on the node.
func (v TagValue) IsMulti() bool {
	return v.multi != nil
}

// String returns the first value.
func (v TagValue) String() string {
	if v.multi != nil {
		return v.multi[0]
	}

	return v.single
}

// Values returns every value in insertion order.
func (v TagValue) Values() []string {
	if v.multi != nil {
		return v.multi
	}

	return []string{v.single}
}

// All iterates over every value in insertion order without allocating.
func (v TagValue) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		if v.multi == nil {
			yield(v.single)
			return
		}
		for _, s := range v.multi {
			if !yield(s) {
				return
			}
		}
	}
}

// Len returns the number of values.
func (v TagValue) Len() int {
	if v.multi != nil {
		return len(v.multi)
	}

	return 1
}

// Contains reports whether any value equals s.
func (v TagValue) Contains(s string) bool {
	if v.multi == nil {
		return v.single == s
	}
	for _, m := range v.multi {
		if m == s {
			return true
		}
	}

	return false
}

func (v TagValue) with(s string) TagValue {
	if v.multi == nil {
		return TagValue{multi: []string{v.single, s}}
	}

	return TagValue{multi: append(v.multi, s)}
}

// Tags maps tag keys to their values.
type Tags map[string]TagValue

// Add inserts a key/value pair. A key already present accumulates the new value.
func (t Tags) Add(key, value string) {
	if cur, ok := t[key]; ok {
		t[key] = cur.with(value)
		return
	}
	t[key] = NewTagValue(value)
}

// Get returns the first value stored for key.
func (t Tags) Get(key string) (string, bool) {
	v, ok := t[key]
	if !ok {
		return "", false
	}

	return v.String(), true
}

// Values returns every value stored for key.
func (t Tags) Values(key string) []string {
	v, ok := t[key]
	if !ok {
		return nil
	}

	return v.Values()
}

// Flatten returns the tags as a plain map keeping only the first value of repeated keys.
func (t Tags) Flatten() map[string]string {
	out := make(map[string]string, len(t))
	for k, v := range t {
		out[k] = v.String()
	}

	return out
}
