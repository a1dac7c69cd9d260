// Package pbftest builds in-memory PBF streams for tests.
//
// Block assembles a PrimitiveBlock from readable node descriptions, computing
// the dense delta columns and the shared keys_vals sequence. Stream frames
// header and data blobs with any supported compression.
package pbftest

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/nodepbf/osmpb"
)

// Tag is one key/value pair. Tags are ordered slices so repeated keys can be expressed.
type Tag struct {
	Key, Value string
}

// Node describes a fixture node. Lat and Lon are in granularity units, Timestamp
// is in date granularity units.
type Node struct {
	ID        int64
	Lat, Lon  int64
	Tags      []Tag
	Version   int32
	Timestamp int64
	Changeset int64
	UID       int32
	User      string
}

// Block builds one PrimitiveBlock.
type Block struct {
	pb    *osmpb.PrimitiveBlock
	index map[string]int32
}

// NewBlock creates a block with default granularities and a string table holding
// only the conventional empty string at index 0.
func NewBlock() *Block {
	pb := &osmpb.PrimitiveBlock{}
	pb.Reset()
	pb.StringTable = &osmpb.StringTable{S: [][]byte{{}}}

	return &Block{pb: pb, index: map[string]int32{"": 0}}
}

// Str returns the string table index of s, adding it when new.
func (b *Block) Str(s string) int32 {
	if idx, ok := b.index[s]; ok {
		return idx
	}
	idx := int32(len(b.pb.StringTable.S)) //nolint:gosec
	b.pb.StringTable.S = append(b.pb.StringTable.S, []byte(s))
	b.index[s] = idx

	return idx
}

// WithGranularity sets the coordinate granularity in nanodegrees.
func (b *Block) WithGranularity(g int32) *Block {
	b.pb.Granularity = g
	return b
}

// WithOffsets sets the latitude and longitude offsets in nanodegrees.
func (b *Block) WithOffsets(lat, lon int64) *Block {
	b.pb.LatOffset = lat
	b.pb.LonOffset = lon

	return b
}

// WithDateGranularity sets the timestamp unit in milliseconds.
func (b *Block) WithDateGranularity(g int32) *Block {
	b.pb.DateGranularity = g
	return b
}

// AddGroup appends a prebuilt group.
func (b *Block) AddGroup(g *osmpb.PrimitiveGroup) *Block {
	b.pb.PrimitiveGroup = append(b.pb.PrimitiveGroup, g)
	return b
}

// AddPlain appends a group of plain nodes, each with an Info.
func (b *Block) AddPlain(nodes ...Node) *Block {
	return b.AddGroup(&osmpb.PrimitiveGroup{Nodes: b.PlainNodes(nodes...)})
}

// PlainNodes converts fixture nodes into plain node messages.
func (b *Block) PlainNodes(nodes ...Node) []*osmpb.Node {
	out := make([]*osmpb.Node, 0, len(nodes))
	for _, n := range nodes {
		pn := &osmpb.Node{
			ID:  n.ID,
			Lat: n.Lat,
			Lon: n.Lon,
			Info: &osmpb.Info{
				Version:   n.Version,
				Timestamp: n.Timestamp,
				Changeset: n.Changeset,
				UID:       n.UID,
				UserSid:   uint32(b.Str(n.User)), //nolint:gosec
			},
		}
		for _, t := range n.Tags {
			pn.Keys = append(pn.Keys, uint32(b.Str(t.Key)))   //nolint:gosec
			pn.Vals = append(pn.Vals, uint32(b.Str(t.Value))) //nolint:gosec
		}
		out = append(out, pn)
	}

	return out
}

// AddDense appends a dense batch with a denseinfo section.
func (b *Block) AddDense(nodes ...Node) *Block {
	return b.AddGroup(&osmpb.PrimitiveGroup{Dense: b.DenseNodes(true, nodes...)})
}

// AddDenseWithoutInfo appends a dense batch without a denseinfo section.
func (b *Block) AddDenseWithoutInfo(nodes ...Node) *Block {
	return b.AddGroup(&osmpb.PrimitiveGroup{Dense: b.DenseNodes(false, nodes...)})
}

// DenseNodes delta-encodes nodes into a dense batch. keys_vals is left empty
// when no node carries tags.
func (b *Block) DenseNodes(withInfo bool, nodes ...Node) *osmpb.DenseNodes {
	dense := &osmpb.DenseNodes{}
	if withInfo {
		dense.DenseInfo = &osmpb.DenseInfo{}
	}

	tagged := false
	for _, n := range nodes {
		if len(n.Tags) > 0 {
			tagged = true
			break
		}
	}

	var prev Node
	var prevUser int32
	for _, n := range nodes {
		dense.ID = append(dense.ID, n.ID-prev.ID)
		dense.Lat = append(dense.Lat, n.Lat-prev.Lat)
		dense.Lon = append(dense.Lon, n.Lon-prev.Lon)

		if withInfo {
			user := b.Str(n.User)
			di := dense.DenseInfo
			di.Version = append(di.Version, n.Version)
			di.Timestamp = append(di.Timestamp, n.Timestamp-prev.Timestamp)
			di.Changeset = append(di.Changeset, n.Changeset-prev.Changeset)
			di.UID = append(di.UID, n.UID-prev.UID)
			di.UserSid = append(di.UserSid, user-prevUser)
			prevUser = user
		}

		if tagged {
			for _, t := range n.Tags {
				dense.KeysVals = append(dense.KeysVals, b.Str(t.Key), b.Str(t.Value))
			}
			dense.KeysVals = append(dense.KeysVals, 0)
		}
		prev = n
	}

	return dense
}

// Message returns the assembled block.
func (b *Block) Message() *osmpb.PrimitiveBlock {
	return b.pb
}

// Bytes marshals the block.
func (b *Block) Bytes(tb testing.TB) []byte {
	tb.Helper()
	return Marshal(tb, b.pb)
}

// Marshal encodes any schema message, failing the test on error.
func Marshal(tb testing.TB, m proto.Message) []byte {
	tb.Helper()

	data, err := proto.Marshal(m)
	require.NoError(tb, err)

	return data
}
