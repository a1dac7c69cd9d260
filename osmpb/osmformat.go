package osmpb

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/arloliu/nodepbf/format"
)

// HeaderBBox is the bounding box of a file, in nanodegrees.
type HeaderBBox struct {
	Left   int64
	Right  int64
	Top    int64
	Bottom int64
}

func (m *HeaderBBox) Reset()         { *m = HeaderBBox{} }
func (m *HeaderBBox) String() string { return fmt.Sprintf("%+v", *m) }
func (*HeaderBBox) ProtoMessage()    {}

func (m *HeaderBBox) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var dst *int64
		switch num {
		case 1:
			dst = &m.Left
		case 2:
			dst = &m.Right
		case 3:
			dst = &m.Top
		case 4:
			dst = &m.Bottom
		default:
			return skipField(num, typ, b)
		}
		v, n, err := consumeVarint(typ, b)
		*dst = sint64(v)

		return n, err
	})
}

func (m *HeaderBBox) Marshal() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, encSint64(m.Left))
	b = appendVarintField(b, 2, encSint64(m.Right))
	b = appendVarintField(b, 3, encSint64(m.Top))
	b = appendVarintField(b, 4, encSint64(m.Bottom))

	return b, nil
}

// HeaderBlock is the payload of the OSMHeader blob that opens every file.
type HeaderBlock struct {
	BBox                             *HeaderBBox
	RequiredFeatures                 []string
	OptionalFeatures                 []string
	WritingProgram                   string
	Source                           string
	OsmosisReplicationTimestamp      int64
	OsmosisReplicationSequenceNumber int64
	OsmosisReplicationBaseURL        string
}

var _ proto.Message = (*HeaderBlock)(nil)

func (m *HeaderBlock) Reset() { *m = HeaderBlock{} }
func (m *HeaderBlock) String() string {
	return fmt.Sprintf("HeaderBlock{required:%v optional:%v program:%q}",
		m.RequiredFeatures, m.OptionalFeatures, m.WritingProgram)
}
func (*HeaderBlock) ProtoMessage() {}

func (m *HeaderBlock) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			m.BBox = &HeaderBBox{}

			return n, m.BBox.Unmarshal(v)
		case 4, 5, 16, 17, 34:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			switch num {
			case 4:
				m.RequiredFeatures = append(m.RequiredFeatures, string(v))
			case 5:
				m.OptionalFeatures = append(m.OptionalFeatures, string(v))
			case 16:
				m.WritingProgram = string(v)
			case 17:
				m.Source = string(v)
			default:
				m.OsmosisReplicationBaseURL = string(v)
			}

			return n, nil
		case 32:
			v, n, err := consumeVarint(typ, b)
			m.OsmosisReplicationTimestamp = int64(v) //nolint:gosec

			return n, err
		case 33:
			v, n, err := consumeVarint(typ, b)
			m.OsmosisReplicationSequenceNumber = int64(v) //nolint:gosec

			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
}

func (m *HeaderBlock) Marshal() ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if m.BBox != nil {
		if b, err = appendMessageField(b, 1, m.BBox); err != nil {
			return nil, err
		}
	}
	for _, f := range m.RequiredFeatures {
		b = appendStringField(b, 4, f)
	}
	for _, f := range m.OptionalFeatures {
		b = appendStringField(b, 5, f)
	}
	if m.WritingProgram != "" {
		b = appendStringField(b, 16, m.WritingProgram)
	}
	if m.Source != "" {
		b = appendStringField(b, 17, m.Source)
	}
	if m.OsmosisReplicationTimestamp != 0 {
		b = appendVarintField(b, 32, uint64(m.OsmosisReplicationTimestamp)) //nolint:gosec
	}
	if m.OsmosisReplicationSequenceNumber != 0 {
		b = appendVarintField(b, 33, uint64(m.OsmosisReplicationSequenceNumber)) //nolint:gosec
	}
	if m.OsmosisReplicationBaseURL != "" {
		b = appendStringField(b, 34, m.OsmosisReplicationBaseURL)
	}

	return b, nil
}

// StringTable is the block-local string storage referenced by index.
// Entries alias the decoded block buffer.
type StringTable struct {
	S [][]byte
}

func (m *StringTable) Reset()         { *m = StringTable{} }
func (m *StringTable) String() string { return fmt.Sprintf("StringTable{len:%d}", len(m.S)) }
func (*StringTable) ProtoMessage()    {}

func (m *StringTable) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return skipField(num, typ, b)
		}
		v, n, err := consumeBytes(typ, b)
		m.S = append(m.S, v)

		return n, err
	})
}

func (m *StringTable) Marshal() ([]byte, error) {
	var b []byte
	for _, s := range m.S {
		b = appendBytesField(b, 1, s)
	}

	return b, nil
}

// PrimitiveBlock is the payload of an OSMData blob.
type PrimitiveBlock struct {
	StringTable     *StringTable
	PrimitiveGroup  []*PrimitiveGroup
	Granularity     int32
	LatOffset       int64
	LonOffset       int64
	DateGranularity int32
}

var _ proto.Message = (*PrimitiveBlock)(nil)

// Reset clears the block and restores the schema defaults for granularity.
func (m *PrimitiveBlock) Reset() {
	*m = PrimitiveBlock{
		Granularity:     format.DefaultGranularity,
		DateGranularity: format.DefaultDateGranularity,
	}
}

func (m *PrimitiveBlock) String() string {
	return fmt.Sprintf("PrimitiveBlock{groups:%d granularity:%d lat_offset:%d lon_offset:%d date_granularity:%d}",
		len(m.PrimitiveGroup), m.Granularity, m.LatOffset, m.LonOffset, m.DateGranularity)
}
func (*PrimitiveBlock) ProtoMessage() {}

// Unmarshal decodes a PrimitiveBlock. Absent granularity fields keep their
// schema defaults (100 and 1000).
func (m *PrimitiveBlock) Unmarshal(b []byte) error {
	if m.Granularity == 0 && m.DateGranularity == 0 && m.StringTable == nil && len(m.PrimitiveGroup) == 0 {
		m.Reset()
	}

	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			m.StringTable = &StringTable{}

			return n, m.StringTable.Unmarshal(v)
		case 2:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			group := &PrimitiveGroup{}
			if err := group.Unmarshal(v); err != nil {
				return 0, err
			}
			m.PrimitiveGroup = append(m.PrimitiveGroup, group)

			return n, nil
		case 17:
			v, n, err := consumeVarint(typ, b)
			m.Granularity = int32v(v)

			return n, err
		case 18:
			v, n, err := consumeVarint(typ, b)
			m.DateGranularity = int32v(v)

			return n, err
		case 19:
			v, n, err := consumeVarint(typ, b)
			m.LatOffset = int64(v) //nolint:gosec

			return n, err
		case 20:
			v, n, err := consumeVarint(typ, b)
			m.LonOffset = int64(v) //nolint:gosec

			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
}

func (m *PrimitiveBlock) Marshal() ([]byte, error) {
	var (
		b   []byte
		err error
	)
	st := m.StringTable
	if st == nil {
		st = &StringTable{}
	}
	if b, err = appendMessageField(b, 1, st); err != nil {
		return nil, err
	}
	for _, g := range m.PrimitiveGroup {
		if b, err = appendMessageField(b, 2, g); err != nil {
			return nil, err
		}
	}
	b = appendVarintField(b, 17, encInt32(m.Granularity))
	b = appendVarintField(b, 18, encInt32(m.DateGranularity))
	if m.LatOffset != 0 {
		b = appendVarintField(b, 19, uint64(m.LatOffset)) //nolint:gosec
	}
	if m.LonOffset != 0 {
		b = appendVarintField(b, 20, uint64(m.LonOffset)) //nolint:gosec
	}

	return b, nil
}

// PrimitiveGroup holds either plain nodes or one dense node batch.
// Ways, relations and changesets are skipped while decoding.
type PrimitiveGroup struct {
	Nodes []*Node
	Dense *DenseNodes
}

func (m *PrimitiveGroup) Reset() { *m = PrimitiveGroup{} }
func (m *PrimitiveGroup) String() string {
	return fmt.Sprintf("PrimitiveGroup{nodes:%d dense:%t}", len(m.Nodes), m.Dense != nil)
}
func (*PrimitiveGroup) ProtoMessage() {}

func (m *PrimitiveGroup) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			node := &Node{}
			if err := node.Unmarshal(v); err != nil {
				return 0, err
			}
			m.Nodes = append(m.Nodes, node)

			return n, nil
		case 2:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			if m.Dense == nil {
				m.Dense = &DenseNodes{}
			}

			return n, m.Dense.Unmarshal(v)
		default:
			return skipField(num, typ, b)
		}
	})
}

func (m *PrimitiveGroup) Marshal() ([]byte, error) {
	var (
		b   []byte
		err error
	)
	for _, node := range m.Nodes {
		if b, err = appendMessageField(b, 1, node); err != nil {
			return nil, err
		}
	}
	if m.Dense != nil {
		if b, err = appendMessageField(b, 2, m.Dense); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// Info carries the optional metadata of a plain node.
type Info struct {
	Version   int32
	Timestamp int64
	Changeset int64
	UID       int32
	UserSid   uint32
	Visible   bool
}

func (m *Info) Reset()         { *m = Info{} }
func (m *Info) String() string { return fmt.Sprintf("%+v", *m) }
func (*Info) ProtoMessage()    {}

func (m *Info) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num < 1 || num > 6 {
			return skipField(num, typ, b)
		}
		v, n, err := consumeVarint(typ, b)
		switch num {
		case 1:
			m.Version = int32v(v)
		case 2:
			m.Timestamp = int64(v) //nolint:gosec
		case 3:
			m.Changeset = int64(v) //nolint:gosec
		case 4:
			m.UID = int32v(v)
		case 5:
			m.UserSid = uint32(v) //nolint:gosec
		case 6:
			m.Visible = v != 0
		}

		return n, err
	})
}

func (m *Info) Marshal() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, encInt32(m.Version))
	b = appendVarintField(b, 2, uint64(m.Timestamp)) //nolint:gosec
	b = appendVarintField(b, 3, uint64(m.Changeset)) //nolint:gosec
	b = appendVarintField(b, 4, encInt32(m.UID))
	b = appendVarintField(b, 5, encUint32(m.UserSid))
	if m.Visible {
		b = appendVarintField(b, 6, 1)
	}

	return b, nil
}

// Node is an explicitly enumerated node. Keys and Vals are parallel string table indices.
type Node struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  int64
	Lon  int64
}

func (m *Node) Reset()         { *m = Node{} }
func (m *Node) String() string { return fmt.Sprintf("Node{id:%d lat:%d lon:%d}", m.ID, m.Lat, m.Lon) }
func (*Node) ProtoMessage()    {}

func (m *Node) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1, 8, 9:
			v, n, err := consumeVarint(typ, b)
			switch num {
			case 1:
				m.ID = sint64(v)
			case 8:
				m.Lat = sint64(v)
			default:
				m.Lon = sint64(v)
			}

			return n, err
		case 2:
			return consumeRepeated(typ, b, func(v uint64) { m.Keys = append(m.Keys, uint32(v)) }) //nolint:gosec
		case 3:
			return consumeRepeated(typ, b, func(v uint64) { m.Vals = append(m.Vals, uint32(v)) }) //nolint:gosec
		case 4:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			m.Info = &Info{}

			return n, m.Info.Unmarshal(v)
		default:
			return skipField(num, typ, b)
		}
	})
}

func (m *Node) Marshal() ([]byte, error) {
	var (
		b   []byte
		err error
	)
	b = appendVarintField(b, 1, encSint64(m.ID))
	b = appendPacked(b, 2, m.Keys, encUint32)
	b = appendPacked(b, 3, m.Vals, encUint32)
	if m.Info != nil {
		if b, err = appendMessageField(b, 4, m.Info); err != nil {
			return nil, err
		}
	}
	b = appendVarintField(b, 8, encSint64(m.Lat))
	b = appendVarintField(b, 9, encSint64(m.Lon))

	return b, nil
}

// DenseInfo is the column-oriented metadata of a dense batch. Version is
// absolute; every other column is delta-encoded.
type DenseInfo struct {
	Version   []int32
	Timestamp []int64
	Changeset []int64
	UID       []int32
	UserSid   []int32
	Visible   []bool
}

func (m *DenseInfo) Reset()         { *m = DenseInfo{} }
func (m *DenseInfo) String() string { return fmt.Sprintf("DenseInfo{len:%d}", len(m.Version)) }
func (*DenseInfo) ProtoMessage()    {}

func (m *DenseInfo) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeRepeated(typ, b, func(v uint64) { m.Version = append(m.Version, int32v(v)) })
		case 2:
			return consumeRepeated(typ, b, func(v uint64) { m.Timestamp = append(m.Timestamp, sint64(v)) })
		case 3:
			return consumeRepeated(typ, b, func(v uint64) { m.Changeset = append(m.Changeset, sint64(v)) })
		case 4:
			return consumeRepeated(typ, b, func(v uint64) { m.UID = append(m.UID, sint32(v)) })
		case 5:
			return consumeRepeated(typ, b, func(v uint64) { m.UserSid = append(m.UserSid, sint32(v)) })
		case 6:
			return consumeRepeated(typ, b, func(v uint64) { m.Visible = append(m.Visible, v != 0) })
		default:
			return skipField(num, typ, b)
		}
	})
}

func (m *DenseInfo) Marshal() ([]byte, error) {
	var b []byte
	b = appendPacked(b, 1, m.Version, encInt32)
	b = appendPacked(b, 2, m.Timestamp, encSint64)
	b = appendPacked(b, 3, m.Changeset, encSint64)
	b = appendPacked(b, 4, m.UID, encSint32)
	b = appendPacked(b, 5, m.UserSid, encSint32)
	b = appendPacked(b, 6, m.Visible, func(v bool) uint64 {
		if v {
			return 1
		}

		return 0
	})

	return b, nil
}

// DenseNodes is a delta-encoded, column-oriented batch of nodes.
//
// ID, Lat and Lon are deltas against the previous node of the batch. KeysVals
// is one flat sequence of (key, value) string table index pairs, each node's
// pairs terminated by a 0.
type DenseNodes struct {
	ID        []int64
	DenseInfo *DenseInfo
	Lat       []int64
	Lon       []int64
	KeysVals  []int32
}

func (m *DenseNodes) Reset() { *m = DenseNodes{} }
func (m *DenseNodes) String() string {
	return fmt.Sprintf("DenseNodes{len:%d keys_vals:%d}", len(m.ID), len(m.KeysVals))
}
func (*DenseNodes) ProtoMessage() {}

func (m *DenseNodes) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeRepeated(typ, b, func(v uint64) { m.ID = append(m.ID, sint64(v)) })
		case 5:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			if m.DenseInfo == nil {
				m.DenseInfo = &DenseInfo{}
			}

			return n, m.DenseInfo.Unmarshal(v)
		case 8:
			return consumeRepeated(typ, b, func(v uint64) { m.Lat = append(m.Lat, sint64(v)) })
		case 9:
			return consumeRepeated(typ, b, func(v uint64) { m.Lon = append(m.Lon, sint64(v)) })
		case 10:
			return consumeRepeated(typ, b, func(v uint64) { m.KeysVals = append(m.KeysVals, int32v(v)) })
		default:
			return skipField(num, typ, b)
		}
	})
}

func (m *DenseNodes) Marshal() ([]byte, error) {
	var (
		b   []byte
		err error
	)
	b = appendPacked(b, 1, m.ID, encSint64)
	if m.DenseInfo != nil {
		if b, err = appendMessageField(b, 5, m.DenseInfo); err != nil {
			return nil, err
		}
	}
	b = appendPacked(b, 8, m.Lat, encSint64)
	b = appendPacked(b, 9, m.Lon, encSint64)
	b = appendPacked(b, 10, m.KeysVals, encInt32)

	return b, nil
}
