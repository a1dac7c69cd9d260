package block

import (
	"fmt"

	"github.com/arloliu/nodepbf/entity"
	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/osmpb"
)

func (d *Decoder) decodePlain(p blockParams, nodes []*osmpb.Node, stats *Stats, emit EmitFunc) error {
	for _, pn := range nodes {
		if len(pn.Keys) != len(pn.Vals) {
			return fmt.Errorf("%w: node %d has %d keys and %d values",
				errs.ErrMalformedBlock, pn.ID, len(pn.Keys), len(pn.Vals))
		}

		var tags entity.Tags
		if len(pn.Keys) > 0 {
			tags = make(entity.Tags, len(pn.Keys))
		}
		for i := range pn.Keys {
			key, err := p.strings.Lookup(int64(pn.Keys[i]))
			if err != nil {
				return fmt.Errorf("node %d key: %w", pn.ID, err)
			}
			val, err := p.strings.Lookup(int64(pn.Vals[i]))
			if err != nil {
				return fmt.Errorf("node %d value: %w", pn.ID, err)
			}
			tags.Add(key, val)
		}

		node := entity.Node{
			ID:   pn.ID,
			Lat:  p.lat(pn.Lat),
			Lon:  p.lon(pn.Lon),
			Tags: tags,
		}
		if info := pn.Info; info != nil {
			user, err := p.strings.Lookup(int64(info.UserSid))
			if err != nil {
				return fmt.Errorf("node %d user: %w", pn.ID, err)
			}
			node.Version = info.Version
			node.Timestamp = p.timestamp(info.Timestamp)
			node.Changeset = info.Changeset
			node.UID = info.UID
			node.User = user
		}

		stats.PlainNodes++
		if err := d.offer(node, stats, emit); err != nil {
			return err
		}
	}

	return nil
}
