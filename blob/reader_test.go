package blob

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/nodepbf/compress"
	"github.com/arloliu/nodepbf/endian"
	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
	"github.com/arloliu/nodepbf/internal/pbftest"
	"github.com/arloliu/nodepbf/osmpb"
)

func sampleBlock() *pbftest.Block {
	return pbftest.NewBlock().AddDense(
		pbftest.Node{ID: 1, Lat: 515000000, Lon: -1275000, Tags: []pbftest.Tag{{Key: "amenity", Value: "cafe"}}},
		pbftest.Node{ID: 2, Lat: 515000100, Lon: -1275100, Tags: []pbftest.Tag{{Key: "amenity", Value: "cafe"}}},
		pbftest.Node{ID: 3, Lat: 515000200, Lon: -1275200},
	)
}

func TestReader_Compressions(t *testing.T) {
	compressions := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZlib,
		format.CompressionLZ4,
		format.CompressionZstd,
	}

	for _, ct := range compressions {
		t.Run(ct.String(), func(t *testing.T) {
			block := sampleBlock()
			want := block.Bytes(t)
			stream := pbftest.NewStream(t).DefaultHeader().Data(block, ct).Data(block, ct)

			r, err := NewReader(stream.Reader())
			require.NoError(t, err)

			_, err = ReadHeader(r)
			require.NoError(t, err)

			for range 2 {
				hdr, err := r.NextHeader()
				require.NoError(t, err)
				require.Equal(t, format.BlobTypeData, hdr.Type)

				payload, err := r.ReadBlob(hdr)
				require.NoError(t, err)
				require.Equal(t, want, payload.Data)
				require.Equal(t, ct, payload.Compression)
				require.Equal(t, int(hdr.DataSize), payload.StoredSize)
			}

			_, err = r.NextHeader()
			require.ErrorIs(t, err, io.EOF)
			require.Equal(t, 3, r.Blobs())
			require.Equal(t, int64(len(stream.Bytes())), r.Offset())
		})
	}
}

func TestReader_PayloadDoesNotAliasBuffer(t *testing.T) {
	stream := pbftest.NewStream(t).
		Blob(format.BlobTypeData, []byte("first"), format.CompressionNone).
		Blob(format.BlobTypeData, []byte("other"), format.CompressionNone)

	r, err := NewReader(stream.Reader())
	require.NoError(t, err)

	hdr, err := r.NextHeader()
	require.NoError(t, err)
	first, err := r.ReadBlob(hdr)
	require.NoError(t, err)

	hdr, err = r.NextHeader()
	require.NoError(t, err)
	second, err := r.ReadBlob(hdr)
	require.NoError(t, err)

	require.Equal(t, []byte("first"), first.Data)
	require.Equal(t, []byte("other"), second.Data)
}

func TestReader_EndOfStream(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "zero length prefix", data: []byte{0, 0, 0, 0}},
		{name: "truncated prefix", data: []byte{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.data))
			require.NoError(t, err)

			_, err = r.NextHeader()
			require.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestReader_MalformedHeader(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		tooBig  bool
		wantErr error
	}{
		{
			name:    "oversized length",
			data:    endian.AppendLengthPrefix(nil, format.MaxHeaderSize+1),
			tooBig:  true,
			wantErr: errs.ErrMalformedHeader,
		},
		{
			name:    "short header",
			data:    append(endian.AppendLengthPrefix(nil, 10), 0x0a, 0x02),
			wantErr: errs.ErrMalformedHeader,
		},
		{
			name:    "undecodable header",
			data:    append(endian.AppendLengthPrefix(nil, 2), 0x0a, 0x05),
			wantErr: errs.ErrMalformedHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.data))
			require.NoError(t, err)

			_, err = r.NextHeader()
			require.ErrorIs(t, err, tt.wantErr)
			if tt.tooBig {
				require.ErrorIs(t, err, errs.ErrBlobTooLarge)
			}
		})
	}
}

func TestReader_TruncatedBlob(t *testing.T) {
	hdr := pbftest.Marshal(t, &osmpb.BlobHeader{Type: format.BlobTypeData, DataSize: 100})
	data := endian.AppendLengthPrefix(nil, uint32(len(hdr)))
	data = append(data, hdr...)
	data = append(data, make([]byte, 10)...)

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	h, err := r.NextHeader()
	require.NoError(t, err)
	_, err = r.ReadBlob(h)
	require.ErrorIs(t, err, errs.ErrTruncatedBlob)
}

func TestReader_BlobTooLarge(t *testing.T) {
	stream := pbftest.NewStream(t).Blob(format.BlobTypeData, bytes.Repeat([]byte("x"), 64), format.CompressionNone)

	r, err := NewReader(stream.Reader(), WithMaxBlobSize(16))
	require.NoError(t, err)

	hdr, err := r.NextHeader()
	require.NoError(t, err)
	_, err = r.ReadBlob(hdr)
	require.ErrorIs(t, err, errs.ErrBlobTooLarge)
}

func TestReader_DeclaredRawSizeTooLarge(t *testing.T) {
	payload := bytes.Repeat([]byte("abcd"), 64)
	blob := pbftest.NewBlob(t, payload, format.CompressionZlib)
	stream := pbftest.NewStream(t).Frame(format.BlobTypeData, pbftest.Marshal(t, blob))

	r, err := NewReader(stream.Reader(), WithMaxBlobSize(128))
	require.NoError(t, err)

	hdr, err := r.NextHeader()
	require.NoError(t, err)
	_, err = r.ReadBlob(hdr)
	require.ErrorIs(t, err, errs.ErrBlobTooLarge)
}

func TestReader_Decompression(t *testing.T) {
	payload := bytes.Repeat([]byte("node"), 32)
	zlibData, err := compress.NewZlibCompressor().Compress(payload)
	require.NoError(t, err)

	badChecksum := bytes.Clone(zlibData)
	badChecksum[len(badChecksum)-1] ^= 0xff

	tests := []struct {
		name string
		blob *osmpb.Blob
	}{
		{name: "corrupt checksum", blob: &osmpb.Blob{ZlibData: badChecksum, RawSize: int32(len(payload))}},
		{name: "raw size mismatch", blob: &osmpb.Blob{ZlibData: zlibData, RawSize: int32(len(payload) + 1)}},
		{name: "corrupt zlib", blob: &osmpb.Blob{ZlibData: []byte{1, 2, 3, 4}, RawSize: 4}},
		{name: "lzma", blob: &osmpb.Blob{LzmaData: []byte{1, 2, 3}, RawSize: 3}},
		{name: "bzip2", blob: &osmpb.Blob{Bzip2Data: []byte{1, 2, 3}, RawSize: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := pbftest.NewStream(t).Frame(format.BlobTypeData, pbftest.Marshal(t, tt.blob))

			r, err := NewReader(stream.Reader())
			require.NoError(t, err)

			hdr, err := r.NextHeader()
			require.NoError(t, err)
			_, err = r.ReadBlob(hdr)
			require.ErrorIs(t, err, errs.ErrDecompression)
		})
	}
}

func TestReader_BlobWithoutData(t *testing.T) {
	stream := pbftest.NewStream(t).Frame(format.BlobTypeData, pbftest.Marshal(t, &osmpb.Blob{RawSize: 3}))

	r, err := NewReader(stream.Reader())
	require.NoError(t, err)

	hdr, err := r.NextHeader()
	require.NoError(t, err)
	_, err = r.ReadBlob(hdr)
	require.ErrorIs(t, err, errs.ErrMalformedBlob)
}

func TestNewReader_InvalidOptions(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil), WithMaxBlobSize(0))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewReader(bytes.NewReader(nil), WithMaxHeaderSize(-1))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestWithMaxHeaderSize(t *testing.T) {
	stream := pbftest.NewStream(t).DefaultHeader()

	r, err := NewReader(stream.Reader(), WithMaxHeaderSize(4))
	require.NoError(t, err)

	_, err = r.NextHeader()
	require.ErrorIs(t, err, errs.ErrMalformedHeader)
}

func TestReader_UndeclaredRawSizeBounded(t *testing.T) {
	payload := bytes.Repeat([]byte("abcd"), 256)

	for _, ct := range []format.CompressionType{format.CompressionZlib, format.CompressionLZ4, format.CompressionZstd} {
		t.Run(ct.String(), func(t *testing.T) {
			blob := pbftest.NewBlob(t, payload, ct)
			blob.RawSize = 0
			stream := pbftest.NewStream(t).Frame(format.BlobTypeData, pbftest.Marshal(t, blob))

			r, err := NewReader(stream.Reader(), WithMaxBlobSize(256))
			require.NoError(t, err)

			hdr, err := r.NextHeader()
			require.NoError(t, err)
			require.Less(t, int(hdr.DataSize), 256)

			_, err = r.ReadBlob(hdr)
			require.ErrorIs(t, err, errs.ErrBlobTooLarge)
		})
	}
}
