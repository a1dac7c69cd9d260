package block

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/nodepbf/entity"
	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/internal/intern"
	"github.com/arloliu/nodepbf/internal/pbftest"
	"github.com/arloliu/nodepbf/match"
	"github.com/arloliu/nodepbf/osmpb"
)

func newDiscoveryDecoder() (*Decoder, *match.Vocabulary) {
	vocab := match.NewVocabulary()
	return NewDecoder(match.NewMatcher(nil, vocab), nil), vocab
}

func collect(t *testing.T, d *Decoder, pb *osmpb.PrimitiveBlock) ([]entity.Node, Stats) {
	t.Helper()

	var nodes []entity.Node
	stats, err := d.DecodeBlock(pbftest.Marshal(t, pb), func(n entity.Node) error {
		nodes = append(nodes, n)
		return nil
	})
	require.NoError(t, err)

	return nodes, stats
}

func stringTable(strs ...string) *osmpb.StringTable {
	st := &osmpb.StringTable{}
	for _, s := range strs {
		st.S = append(st.S, []byte(s))
	}

	return st
}

func denseBlock(st *osmpb.StringTable, dense *osmpb.DenseNodes) *osmpb.PrimitiveBlock {
	pb := &osmpb.PrimitiveBlock{}
	pb.Reset()
	pb.StringTable = st
	pb.PrimitiveGroup = []*osmpb.PrimitiveGroup{{Dense: dense}}

	return pb
}

func TestDecodeDense_DeltaIDs(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	pb := denseBlock(stringTable(""), &osmpb.DenseNodes{
		ID:  []int64{5, 0, 3},
		Lat: []int64{0, 0, 0},
		Lon: []int64{0, 0, 0},
	})

	nodes, stats := collect(t, d, pb)
	require.Len(t, nodes, 3)
	require.Equal(t, int64(5), nodes[0].ID)
	require.Equal(t, int64(5), nodes[1].ID)
	require.Equal(t, int64(8), nodes[2].ID)
	require.Equal(t, 3, stats.DenseNodes)
	require.Equal(t, 3, stats.Matched)
}

func TestDecodeDense_SharedTagCursor(t *testing.T) {
	d, vocab := newDiscoveryDecoder()
	pb := denseBlock(stringTable("", "amenity", "cafe", "shop", "bakery"), &osmpb.DenseNodes{
		ID:       []int64{1, 1},
		Lat:      []int64{0, 0},
		Lon:      []int64{0, 0},
		KeysVals: []int32{1, 2, 0, 3, 4, 0},
	})

	nodes, stats := collect(t, d, pb)
	require.Len(t, nodes, 2)
	require.Equal(t, map[string]string{"amenity": "cafe"}, nodes[0].Tags.Flatten())
	require.Equal(t, map[string]string{"shop": "bakery"}, nodes[1].Tags.Flatten())
	require.Zero(t, stats.TruncatedBatches)

	require.True(t, vocab.Contains("amenity", "cafe"))
	require.True(t, vocab.Contains("shop", "bakery"))
	require.Equal(t, 2, vocab.Len())
}

func TestDecodeDense_UntaggedNodeBetweenTagged(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	b := pbftest.NewBlock().AddDense(
		pbftest.Node{ID: 1, Tags: []pbftest.Tag{{Key: "amenity", Value: "cafe"}}},
		pbftest.Node{ID: 2},
		pbftest.Node{ID: 3, Tags: []pbftest.Tag{{Key: "shop", Value: "bakery"}}},
	)

	nodes, _ := collect(t, d, b.Message())
	require.Len(t, nodes, 3)
	require.Equal(t, "cafe", nodes[0].Tags["amenity"].String())
	require.Empty(t, nodes[1].Tags)
	require.Equal(t, "bakery", nodes[2].Tags["shop"].String())
}

func TestDecodeDense_EmptyBatch(t *testing.T) {
	d, vocab := newDiscoveryDecoder()
	pb := denseBlock(stringTable(""), &osmpb.DenseNodes{})

	nodes, stats := collect(t, d, pb)
	require.Empty(t, nodes)
	require.Equal(t, 1, stats.Groups)
	require.Zero(t, stats.DenseNodes)
	require.True(t, vocab.IsEmpty())
}

func TestDecodeDense_Coordinates(t *testing.T) {
	tests := []struct {
		name        string
		granularity int32
		latOffset   int64
		lonOffset   int64
		lat, lon    int64
		wantLat     float64
		wantLon     float64
	}{
		{name: "default granularity", granularity: 100, lat: 515000000, lon: -1275000, wantLat: 51.5, wantLon: -0.1275},
		{name: "coarse granularity", granularity: 1000, lat: 51500000, lon: 13400000, wantLat: 51.5, wantLon: 13.4},
		{name: "with offsets", granularity: 100, latOffset: 1_000_000_000, lonOffset: -2_000_000_000, lat: 0, lon: 0, wantLat: 1, wantLon: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newDiscoveryDecoder()
			b := pbftest.NewBlock().
				WithGranularity(tt.granularity).
				WithOffsets(tt.latOffset, tt.lonOffset).
				AddDense(pbftest.Node{ID: 1, Lat: tt.lat, Lon: tt.lon})

			nodes, _ := collect(t, d, b.Message())
			require.Len(t, nodes, 1)
			require.InDelta(t, tt.wantLat, nodes[0].Lat, 1e-9)
			require.InDelta(t, tt.wantLon, nodes[0].Lon, 1e-9)
		})
	}
}

func TestDecodeDense_AccumulatedCoordinates(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	b := pbftest.NewBlock().AddDense(
		pbftest.Node{ID: 10, Lat: 515000000, Lon: 0},
		pbftest.Node{ID: 11, Lat: 515000100, Lon: 100},
	)
	// The dense columns hold deltas.
	require.Equal(t, []int64{515000000, 100}, b.Message().PrimitiveGroup[0].Dense.Lat)

	nodes, _ := collect(t, d, b.Message())
	require.Len(t, nodes, 2)
	require.InDelta(t, 51.50001, nodes[1].Lat, 1e-9)
	require.InDelta(t, 0.00001, nodes[1].Lon, 1e-9)
}

func TestDecodeDense_Info(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	b := pbftest.NewBlock().AddDense(
		pbftest.Node{ID: 1, Version: 3, Timestamp: 1_600_000_000, Changeset: 100, UID: 7, User: "alice"},
		pbftest.Node{ID: 2, Version: 1, Timestamp: 1_600_000_060, Changeset: 90, UID: 9, User: "bob"},
	)

	nodes, _ := collect(t, d, b.Message())
	require.Len(t, nodes, 2)

	require.Equal(t, int32(3), nodes[0].Version)
	require.Equal(t, int64(1_600_000_000_000), nodes[0].Timestamp)
	require.Equal(t, int64(100), nodes[0].Changeset)
	require.Equal(t, int32(7), nodes[0].UID)
	require.Equal(t, "alice", nodes[0].User)

	require.Equal(t, int32(1), nodes[1].Version)
	require.Equal(t, int64(1_600_000_060_000), nodes[1].Timestamp)
	require.Equal(t, int64(90), nodes[1].Changeset)
	require.Equal(t, int32(9), nodes[1].UID)
	require.Equal(t, "bob", nodes[1].User)
}

func TestDecodeDense_WithoutInfo(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	b := pbftest.NewBlock().AddDenseWithoutInfo(pbftest.Node{ID: 1, Version: 3, User: "alice"})

	nodes, _ := collect(t, d, b.Message())
	require.Len(t, nodes, 1)
	require.Zero(t, nodes[0].Version)
	require.Zero(t, nodes[0].Timestamp)
	require.Empty(t, nodes[0].User)
}

func TestDecodeDense_ShortInfoColumns(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	pb := denseBlock(stringTable(""), &osmpb.DenseNodes{
		ID:        []int64{1, 1},
		Lat:       []int64{0, 0},
		Lon:       []int64{0, 0},
		DenseInfo: &osmpb.DenseInfo{Version: []int32{2}, Timestamp: []int64{10}},
	})

	nodes, _ := collect(t, d, pb)
	require.Len(t, nodes, 2)
	require.Equal(t, int32(2), nodes[0].Version)
	require.Zero(t, nodes[1].Version)
	// A missing delta leaves the accumulator unchanged.
	require.Equal(t, int64(10_000), nodes[1].Timestamp)
}

func TestDecodeDense_RepeatedKey(t *testing.T) {
	d, vocab := newDiscoveryDecoder()
	b := pbftest.NewBlock().AddDense(pbftest.Node{ID: 1, Tags: []pbftest.Tag{
		{Key: "amenity", Value: "cafe"},
		{Key: "amenity", Value: "bar"},
	}})

	nodes, _ := collect(t, d, b.Message())
	require.Len(t, nodes, 1)
	tv := nodes[0].Tags["amenity"]
	require.True(t, tv.IsMulti())
	require.Equal(t, []string{"cafe", "bar"}, tv.Values())
	require.Equal(t, []string{"bar", "cafe"}, vocab.Values("amenity"))
}

func TestDecodeDense_TruncatedTagList(t *testing.T) {
	tests := []struct {
		name     string
		keysVals []int32
		want     []map[string]string
	}{
		{
			name:     "missing sentinel",
			keysVals: []int32{1, 2},
			want:     []map[string]string{{"amenity": "cafe"}, {}, {}},
		},
		{
			name:     "key without value",
			keysVals: []int32{1, 2, 0, 3},
			want:     []map[string]string{{"amenity": "cafe"}, {}, {}},
		},
		{
			name:     "fewer sentinels than nodes",
			keysVals: []int32{1, 2, 0, 3, 4, 0},
			want:     []map[string]string{{"amenity": "cafe"}, {"shop": "bakery"}, {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newDiscoveryDecoder()
			pb := denseBlock(stringTable("", "amenity", "cafe", "shop", "bakery"), &osmpb.DenseNodes{
				ID:       []int64{1, 1, 1},
				Lat:      []int64{0, 0, 0},
				Lon:      []int64{0, 0, 0},
				KeysVals: tt.keysVals,
			})

			nodes, stats := collect(t, d, pb)
			require.Len(t, nodes, 3)
			for i, want := range tt.want {
				require.Equal(t, want, nodes[i].Tags.Flatten(), "node %d", i)
			}
			require.Equal(t, 1, stats.TruncatedBatches)
		})
	}
}

func TestDecodeDense_MalformedColumns(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	pb := denseBlock(stringTable(""), &osmpb.DenseNodes{
		ID:  []int64{1, 1},
		Lat: []int64{0},
		Lon: []int64{0, 0},
	})

	_, err := d.DecodeBlock(pbftest.Marshal(t, pb), func(entity.Node) error { return nil })
	require.ErrorIs(t, err, errs.ErrMalformedBlock)
}

func TestDecodeDense_StringIndexOutOfRange(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	pb := denseBlock(stringTable("", "amenity"), &osmpb.DenseNodes{
		ID:       []int64{1},
		Lat:      []int64{0},
		Lon:      []int64{0},
		KeysVals: []int32{1, 9, 0},
	})

	_, err := d.DecodeBlock(pbftest.Marshal(t, pb), func(entity.Node) error { return nil })
	require.ErrorIs(t, err, errs.ErrStringIndexOutOfRange)
}

func TestDecodePlain(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	b := pbftest.NewBlock().WithDateGranularity(1000).AddPlain(
		pbftest.Node{
			ID: 42, Lat: 515000000, Lon: -1275000,
			Tags:    []pbftest.Tag{{Key: "amenity", Value: "cafe"}, {Key: "name", Value: "Corner"}},
			Version: 2, Timestamp: 1_500_000_000, Changeset: 12, UID: 5, User: "carol",
		},
		pbftest.Node{ID: 43, Timestamp: 1_700_000_000},
	)

	nodes, stats := collect(t, d, b.Message())
	require.Len(t, nodes, 2)
	require.Equal(t, 2, stats.PlainNodes)

	n := nodes[0]
	require.Equal(t, int64(42), n.ID)
	require.InDelta(t, 51.5, n.Lat, 1e-9)
	require.InDelta(t, -0.1275, n.Lon, 1e-9)
	require.Equal(t, map[string]string{"amenity": "cafe", "name": "Corner"}, n.Tags.Flatten())
	require.Equal(t, int32(2), n.Version)
	require.Equal(t, int64(1_500_000_000_000), n.Timestamp)
	require.Equal(t, int64(12), n.Changeset)
	require.Equal(t, int32(5), n.UID)
	require.Equal(t, "carol", n.User)

	// Each plain node uses its own timestamp.
	require.Equal(t, int64(1_700_000_000_000), nodes[1].Timestamp)
	require.Empty(t, nodes[1].Tags)
}

func TestDecodePlain_RepeatedKey(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	b := pbftest.NewBlock().AddPlain(pbftest.Node{ID: 1, Tags: []pbftest.Tag{
		{Key: "amenity", Value: "cafe"},
		{Key: "amenity", Value: "bar"},
	}})

	nodes, _ := collect(t, d, b.Message())
	require.Len(t, nodes, 1)
	require.Equal(t, []string{"cafe", "bar"}, nodes[0].Tags.Values("amenity"))
}

func TestDecodePlain_WithoutInfo(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	pb := &osmpb.PrimitiveBlock{}
	pb.Reset()
	pb.PrimitiveGroup = []*osmpb.PrimitiveGroup{{Nodes: []*osmpb.Node{{ID: 7, Lat: 100, Lon: 200}}}}

	nodes, _ := collect(t, d, pb)
	require.Len(t, nodes, 1)
	require.Equal(t, int64(7), nodes[0].ID)
	require.InDelta(t, 1e-5, nodes[0].Lat, 1e-12)
	require.InDelta(t, 2e-5, nodes[0].Lon, 1e-12)
	require.Zero(t, nodes[0].Timestamp)
	require.Empty(t, nodes[0].User)
}

func TestDecodePlain_KeyValueMismatch(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	pb := &osmpb.PrimitiveBlock{}
	pb.Reset()
	pb.StringTable = stringTable("", "amenity", "cafe")
	pb.PrimitiveGroup = []*osmpb.PrimitiveGroup{{Nodes: []*osmpb.Node{{ID: 1, Keys: []uint32{1, 1}, Vals: []uint32{2}}}}}

	_, err := d.DecodeBlock(pbftest.Marshal(t, pb), func(entity.Node) error { return nil })
	require.ErrorIs(t, err, errs.ErrMalformedBlock)
}

func TestDecodeBlock_FilterMode(t *testing.T) {
	filter := match.NewFilter(map[string][]string{"amenity": {"cafe"}})
	d := NewDecoder(match.NewMatcher(filter, nil), nil)

	b := pbftest.NewBlock().
		AddDense(
			pbftest.Node{ID: 1, Tags: []pbftest.Tag{{Key: "amenity", Value: "cafe"}}},
			pbftest.Node{ID: 2, Tags: []pbftest.Tag{{Key: "amenity", Value: "bar"}}},
			pbftest.Node{ID: 3},
		).
		AddPlain(pbftest.Node{ID: 4, Tags: []pbftest.Tag{{Key: "amenity", Value: "cafe"}}})

	nodes, stats := collect(t, d, b.Message())
	require.Len(t, nodes, 2)
	require.Equal(t, int64(1), nodes[0].ID)
	require.Equal(t, int64(4), nodes[1].ID)
	require.Equal(t, 2, stats.Groups)
	require.Equal(t, 3, stats.DenseNodes)
	require.Equal(t, 1, stats.PlainNodes)
	require.Equal(t, 2, stats.Matched)
}

func TestDecodeBlock_GroupWithPlainAndDense(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	b := pbftest.NewBlock()
	b.AddGroup(&osmpb.PrimitiveGroup{
		Nodes: b.PlainNodes(pbftest.Node{ID: 1}),
		Dense: b.DenseNodes(true, pbftest.Node{ID: 2}),
	})

	nodes, stats := collect(t, d, b.Message())
	require.Len(t, nodes, 2)
	require.Equal(t, int64(1), nodes[0].ID)
	require.Equal(t, int64(2), nodes[1].ID)
	require.Equal(t, 1, stats.Groups)
}

func TestDecodeBlock_NoGroups(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	nodes, stats := collect(t, d, pbftest.NewBlock().Message())
	require.Empty(t, nodes)
	require.Zero(t, stats.Groups)
}

func TestDecodeBlock_MalformedBytes(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	_, err := d.DecodeBlock([]byte{0x0a, 0xff}, func(entity.Node) error { return nil })
	require.ErrorIs(t, err, errs.ErrMalformedBlock)
}

func TestDecodeBlock_EmitErrorAborts(t *testing.T) {
	d, _ := newDiscoveryDecoder()
	b := pbftest.NewBlock().AddDense(pbftest.Node{ID: 1}, pbftest.Node{ID: 2}, pbftest.Node{ID: 3})

	stop := errors.New("stop")
	calls := 0
	_, err := d.DecodeBlock(b.Bytes(t), func(entity.Node) error {
		calls++
		if calls == 2 {
			return stop
		}

		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 2, calls)
}

func TestDecodeBlock_InternsAcrossBlocks(t *testing.T) {
	interner := intern.NewTable(intern.DefaultMaxEntries)
	d := NewDecoder(match.NewMatcher(nil, nil), interner)

	for range 2 {
		b := pbftest.NewBlock().AddDense(pbftest.Node{ID: 1, Tags: []pbftest.Tag{{Key: "amenity", Value: "cafe"}}})
		collect(t, d, b.Message())
	}
	// "", "amenity" and "cafe"
	require.Equal(t, 3, interner.Len())
}

func TestStringTable_Lookup(t *testing.T) {
	st := NewStringTable(stringTable("", "a"), nil)
	require.Equal(t, 2, st.Len())

	s, err := st.Lookup(1)
	require.NoError(t, err)
	require.Equal(t, "a", s)

	_, err = st.Lookup(2)
	require.ErrorIs(t, err, errs.ErrStringIndexOutOfRange)
	_, err = st.Lookup(-1)
	require.ErrorIs(t, err, errs.ErrStringIndexOutOfRange)

	require.Zero(t, NewStringTable(nil, nil).Len())
}

func TestStats_Add(t *testing.T) {
	s := Stats{Groups: 1, DenseNodes: 2, Matched: 1}
	s.Add(Stats{Groups: 2, PlainNodes: 3, Matched: 2, TruncatedBatches: 1})
	require.Equal(t, Stats{Groups: 3, PlainNodes: 3, DenseNodes: 2, Matched: 3, TruncatedBatches: 1}, s)
}
