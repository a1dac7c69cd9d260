package pbftest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/nodepbf/compress"
	"github.com/arloliu/nodepbf/endian"
	"github.com/arloliu/nodepbf/format"
	"github.com/arloliu/nodepbf/osmpb"
)

// Stream accumulates framed blobs.
type Stream struct {
	tb  testing.TB
	buf []byte
}

// NewStream creates an empty stream.
func NewStream(tb testing.TB) *Stream {
	tb.Helper()
	return &Stream{tb: tb}
}

// Header appends an OSMHeader blob whose header block requires features.
func (s *Stream) Header(features ...string) *Stream {
	s.tb.Helper()
	return s.HeaderBlock(&osmpb.HeaderBlock{RequiredFeatures: features}, format.CompressionZlib)
}

// DefaultHeader appends a header requiring OsmSchema-V0.6 and DenseNodes.
func (s *Stream) DefaultHeader() *Stream {
	s.tb.Helper()
	return s.Header(format.FeatureOsmSchema, format.FeatureDenseNodes)
}

// HeaderBlock appends an OSMHeader blob carrying hb.
func (s *Stream) HeaderBlock(hb *osmpb.HeaderBlock, ct format.CompressionType) *Stream {
	s.tb.Helper()
	return s.Blob(format.BlobTypeHeader, Marshal(s.tb, hb), ct)
}

// Data appends an OSMData blob carrying b.
func (s *Stream) Data(b *Block, ct format.CompressionType) *Stream {
	s.tb.Helper()
	return s.Blob(format.BlobTypeData, b.Bytes(s.tb), ct)
}

// Blob appends a blob of type typ holding payload compressed with ct.
func (s *Stream) Blob(typ string, payload []byte, ct format.CompressionType) *Stream {
	s.tb.Helper()
	return s.Frame(typ, Marshal(s.tb, NewBlob(s.tb, payload, ct)))
}

// Frame appends a length prefix, a BlobHeader of type typ, and blob bytes as is.
func (s *Stream) Frame(typ string, blob []byte) *Stream {
	s.tb.Helper()

	hdr := Marshal(s.tb, &osmpb.BlobHeader{Type: typ, DataSize: int32(len(blob))}) //nolint:gosec
	s.buf = endian.AppendLengthPrefix(s.buf, uint32(len(hdr)))                     //nolint:gosec
	s.buf = append(s.buf, hdr...)
	s.buf = append(s.buf, blob...)

	return s
}

// Append appends arbitrary bytes, for building malformed streams.
func (s *Stream) Append(b ...byte) *Stream {
	s.buf = append(s.buf, b...)
	return s
}

// Bytes returns the stream contents.
func (s *Stream) Bytes() []byte {
	return s.buf
}

// Reader returns a reader over the stream contents.
func (s *Stream) Reader() *bytes.Reader {
	return bytes.NewReader(s.buf)
}

// NewBlob compresses payload with ct into a Blob message.
func NewBlob(tb testing.TB, payload []byte, ct format.CompressionType) *osmpb.Blob {
	tb.Helper()

	if ct == format.CompressionNone {
		raw := payload
		if raw == nil {
			raw = []byte{}
		}

		return &osmpb.Blob{Raw: raw}
	}

	codec, err := compress.CreateCodec(ct)
	require.NoError(tb, err)
	data, err := codec.Compress(payload)
	require.NoError(tb, err)

	blob := &osmpb.Blob{RawSize: int32(len(payload))} //nolint:gosec
	switch ct {                                       //nolint:exhaustive
	case format.CompressionZlib:
		blob.ZlibData = data
	case format.CompressionLZ4:
		blob.LZ4Data = data
	case format.CompressionZstd:
		blob.ZstdData = data
	default:
		tb.Fatalf("pbftest: unsupported compression %s", ct)
	}

	return blob
}
