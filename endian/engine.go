// Package endian provides the byte order engine used for PBF framing.
//
// A PBF stream prefixes every BlobHeader with a 4-byte length in network
// (big-endian) byte order. The engine combines binary.ByteOrder and
// binary.AppendByteOrder so the same value serves the reader and the test
// fixture writer.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// LengthPrefixSize is the size in bytes of the BlobHeader length prefix.
const LengthPrefixSize = 4

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetFramingEngine returns the engine used for the BlobHeader length prefix.
func GetFramingEngine() EndianEngine {
	return GetBigEndianEngine()
}

// AppendLengthPrefix appends n as a framing length prefix.
func AppendLengthPrefix(dst []byte, n uint32) []byte {
	return GetFramingEngine().AppendUint32(dst, n)
}
