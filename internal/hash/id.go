package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of a raw string table entry.
func ID(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// IDString computes the xxHash64 of s; it equals ID([]byte(s)).
func IDString(s string) uint64 {
	return xxhash.Sum64String(s)
}
