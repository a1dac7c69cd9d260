package block

import (
	"fmt"

	"github.com/arloliu/nodepbf/entity"
	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/osmpb"
)

// tagCursor walks the keys_vals sequence shared by every node of a dense batch.
type tagCursor struct {
	keysVals  []int32
	pos       int
	truncated bool
}

// next consumes the pairs of one node and its 0 sentinel.
//
// Once the sequence is exhausted every further call returns no tags. Running
// out mid-node, or with nodes still to come, marks the cursor truncated.
func (c *tagCursor) next(st *StringTable) (entity.Tags, error) {
	var tags entity.Tags
	for {
		if c.pos >= len(c.keysVals) {
			if len(c.keysVals) > 0 {
				c.truncated = true
			}

			return tags, nil
		}

		k := c.keysVals[c.pos]
		if k == 0 {
			c.pos++
			return tags, nil
		}
		if c.pos+1 >= len(c.keysVals) {
			// Key without a value.
			c.pos = len(c.keysVals)
			c.truncated = true

			return tags, nil
		}
		v := c.keysVals[c.pos+1]
		c.pos += 2

		key, err := st.Lookup(int64(k))
		if err != nil {
			return nil, fmt.Errorf("key: %w", err)
		}
		val, err := st.Lookup(int64(v))
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		if tags == nil {
			tags = make(entity.Tags)
		}
		tags.Add(key, val)
	}
}

func (d *Decoder) decodeDense(p blockParams, dense *osmpb.DenseNodes, stats *Stats, emit EmitFunc) error {
	count := len(dense.ID)
	if len(dense.Lat) < count || len(dense.Lon) < count {
		return fmt.Errorf("%w: dense batch has %d ids, %d lats, %d lons",
			errs.ErrMalformedBlock, count, len(dense.Lat), len(dense.Lon))
	}

	info := dense.DenseInfo
	hasInfo := info != nil
	if !hasInfo {
		info = &osmpb.DenseInfo{}
	}

	var (
		id, lat, lon      int64
		ts, changeset     int64
		uid, userIdx      int32
		cursor            = tagCursor{keysVals: dense.KeysVals}
		hasKeysVals       = len(dense.KeysVals) > 0
		truncatedReported bool
	)

	for i := range count {
		id += dense.ID[i]
		lat += dense.Lat[i]
		lon += dense.Lon[i]

		var version int32
		if i < len(info.Version) {
			version = info.Version[i]
		}
		if i < len(info.Timestamp) {
			ts += info.Timestamp[i]
		}
		if i < len(info.Changeset) {
			changeset += info.Changeset[i]
		}
		if i < len(info.UID) {
			uid += info.UID[i]
		}
		if i < len(info.UserSid) {
			userIdx += info.UserSid[i]
		}

		var tags entity.Tags
		if hasKeysVals {
			var err error
			if tags, err = cursor.next(p.strings); err != nil {
				return fmt.Errorf("dense node %d: %w", id, err)
			}
		}
		if cursor.truncated && !truncatedReported {
			stats.TruncatedBatches++
			truncatedReported = true
		}

		node := entity.Node{
			ID:        id,
			Lat:       p.lat(lat),
			Lon:       p.lon(lon),
			Tags:      tags,
			Version:   version,
			Timestamp: p.timestamp(ts),
			Changeset: changeset,
			UID:       uid,
		}
		if hasInfo {
			user, err := p.strings.Lookup(int64(userIdx))
			if err != nil {
				return fmt.Errorf("dense node %d user: %w", id, err)
			}
			node.User = user
		}

		stats.DenseNodes++
		if err := d.offer(node, stats, emit); err != nil {
			return err
		}
	}

	return nil
}
