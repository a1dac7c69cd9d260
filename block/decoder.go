package block

import (
	"fmt"

	"github.com/gogo/protobuf/proto"

	"github.com/arloliu/nodepbf/entity"
	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
	"github.com/arloliu/nodepbf/internal/intern"
	"github.com/arloliu/nodepbf/match"
	"github.com/arloliu/nodepbf/osmpb"
)

// EmitFunc receives every matched node. A non-nil error aborts decoding.
type EmitFunc func(entity.Node) error

// Stats summarises one decoded block.
type Stats struct {
	Groups     int
	PlainNodes int
	DenseNodes int
	Matched    int
	// TruncatedBatches counts dense batches whose keys_vals ran out before every
	// node consumed its sentinel.
	TruncatedBatches int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Groups += o.Groups
	s.PlainNodes += o.PlainNodes
	s.DenseNodes += o.DenseNodes
	s.Matched += o.Matched
	s.TruncatedBatches += o.TruncatedBatches
}

// Decoder decodes primitive blocks and routes their groups to the node decoders.
//
// Note: Decoder is NOT thread-safe; the matcher's vocabulary and the interner
// are single-writer.
type Decoder struct {
	matcher  *match.Matcher
	interner *intern.Table
}

// NewDecoder creates a Decoder. interner may be nil to disable string sharing across blocks.
func NewDecoder(matcher *match.Matcher, interner *intern.Table) *Decoder {
	return &Decoder{matcher: matcher, interner: interner}
}

// blockParams carries the per-block values every node decode depends on.
type blockParams struct {
	strings         *StringTable
	granularity     int64
	latOffset       int64
	lonOffset       int64
	dateGranularity int64
}

func newBlockParams(pb *osmpb.PrimitiveBlock, strings *StringTable) blockParams {
	return blockParams{
		strings:         strings,
		granularity:     int64(pb.Granularity),
		latOffset:       pb.LatOffset,
		lonOffset:       pb.LonOffset,
		dateGranularity: int64(pb.DateGranularity),
	}
}

func (p blockParams) lat(acc int64) float64 {
	return float64(acc*p.granularity+p.latOffset) / format.NanoDegrees
}

func (p blockParams) lon(acc int64) float64 {
	return float64(acc*p.granularity+p.lonOffset) / format.NanoDegrees
}

func (p blockParams) timestamp(raw int64) int64 {
	return raw * p.dateGranularity
}

// DecodeBlock decodes data as a PrimitiveBlock and emits each matched node.
func (d *Decoder) DecodeBlock(data []byte, emit EmitFunc) (Stats, error) {
	var pb osmpb.PrimitiveBlock
	if err := proto.Unmarshal(data, &pb); err != nil {
		return Stats{}, fmt.Errorf("%w: %w", errs.ErrMalformedBlock, err)
	}

	return d.Decode(&pb, emit)
}

// Decode emits the matched nodes of an already unmarshalled block.
func (d *Decoder) Decode(pb *osmpb.PrimitiveBlock, emit EmitFunc) (Stats, error) {
	var stats Stats
	params := newBlockParams(pb, NewStringTable(pb.StringTable, d.interner))

	for i, group := range pb.PrimitiveGroup {
		stats.Groups++

		if len(group.Nodes) > 0 {
			if err := d.decodePlain(params, group.Nodes, &stats, emit); err != nil {
				return stats, fmt.Errorf("group %d: %w", i, err)
			}
		}
		if group.Dense != nil {
			if err := d.decodeDense(params, group.Dense, &stats, emit); err != nil {
				return stats, fmt.Errorf("group %d: %w", i, err)
			}
		}
	}

	return stats, nil
}

// offer runs the matcher and emits the node when it matches.
func (d *Decoder) offer(node entity.Node, stats *Stats, emit EmitFunc) error {
	if !d.matcher.Match(node.Tags) {
		return nil
	}
	stats.Matched++

	return emit(node)
}
