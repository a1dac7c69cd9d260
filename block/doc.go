// Package block decodes OSMData primitive blocks into nodes.
//
// A Decoder unmarshals one PrimitiveBlock, resolves its string table, and walks
// its groups in order. A group carrying plain nodes goes to the plain decoder,
// a group carrying a dense batch goes to the dense decoder. Every decoded node
// is offered to a match.Matcher and emitted only when it matches.
//
// Coordinates always use the owning block's granularity and offsets:
//
//	degrees = (accumulated × granularity + offset) / 1e9
//
// # Dense batches
//
// A dense batch stores nodes column-wise. id, lat, lon and the timestamp,
// changeset, uid and user string columns are deltas against the previous node,
// so running accumulators start at zero for each batch and are never reset
// inside it. The tags of every node share one flat keys_vals sequence:
//
//	keys_vals: [k1 v1 k2 v2 0 | 0 | k3 v3 0]
//	            node 0         n1  node 2
//
// A single cursor walks that sequence across the whole batch; each node consumes
// its pairs plus the 0 sentinel. When the cursor runs off the end the remaining
// nodes of the batch get no tags.
package block
