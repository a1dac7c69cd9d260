// Package osmpb holds the OpenStreetMap PBF wire messages (fileformat.proto and
// osmformat.proto) as plain Go structs.
//
// Each message implements the gogo/protobuf Message, Unmarshaler and Marshaler
// interfaces, so callers decode with proto.Unmarshal and encode with
// proto.Marshal exactly as with generated code. Field decoding is done with
// google.golang.org/protobuf/encoding/protowire. Repeated scalar fields accept
// both packed and unpacked encodings; unknown fields are skipped.
//
// Only the parts of osmformat.proto needed for nodes are modelled. Ways,
// relations and changesets inside a PrimitiveGroup are skipped while decoding.
package osmpb
