package entity

import "time"

// Node is one decoded OpenStreetMap node.
//
// A Node is created by a block decoder and never mutated once emitted.
type Node struct {
	ID  int64
	Lat float64 // degrees
	Lon float64 // degrees

	Tags Tags

	Version int32
	// Timestamp is milliseconds since the Unix epoch (raw timestamp × date granularity).
	Timestamp int64
	Changeset int64
	UID       int32
	User      string
}

// Time returns the node timestamp as a UTC time.
func (n Node) Time() time.Time {
	return time.UnixMilli(n.Timestamp).UTC()
}

// HasTags reports whether the node carries at least one tag.
func (n Node) HasTags() bool {
	return len(n.Tags) > 0
}
