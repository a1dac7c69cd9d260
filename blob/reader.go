package blob

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gogo/protobuf/proto"

	"github.com/arloliu/nodepbf/compress"
	"github.com/arloliu/nodepbf/endian"
	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
	"github.com/arloliu/nodepbf/internal/options"
	"github.com/arloliu/nodepbf/internal/pool"
	"github.com/arloliu/nodepbf/osmpb"
)

// Payload is one inflated blob.
type Payload struct {
	// Data is the inflated block, owned by the caller.
	Data []byte
	// Compression is the encoding the blob was stored with.
	Compression format.CompressionType
	// StoredSize is the number of Blob bytes read from the stream.
	StoredSize int
}

// Reader reads length-prefixed blobs from a stream.
//
// Only one blob payload is buffered at a time. The read buffer comes from a
// shared pool and is returned before ReadBlob returns.
//
// Note: Reader is NOT thread-safe.
type Reader struct {
	r      io.Reader
	cfg    ReaderConfig
	engine endian.EndianEngine
	prefix [endian.LengthPrefixSize]byte
	hdrBuf []byte
	offset int64
	blobs  int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	cfg := DefaultReaderConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	return &Reader{
		r:      r,
		cfg:    cfg,
		engine: endian.GetFramingEngine(),
	}, nil
}

// Offset returns the number of bytes consumed from the stream.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Blobs returns the number of blob headers read.
func (r *Reader) Blobs() int {
	return r.blobs
}

// NextHeader reads the next length prefix and BlobHeader.
//
// It returns io.EOF at the end of the stream: a clean end, a zero length
// prefix, or a stream ending inside the 4-byte prefix.
func (r *Reader) NextHeader() (*osmpb.BlobHeader, error) {
	if _, err := io.ReadFull(r.r, r.prefix[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("read blob header length at offset %d: %w", r.offset, err)
	}
	start := r.offset
	r.offset += endian.LengthPrefixSize

	size := r.engine.Uint32(r.prefix[:])
	if size == 0 {
		return nil, io.EOF
	}
	if int64(size) > int64(r.cfg.MaxHeaderSize) {
		return nil, fmt.Errorf("%w: %w: header length %d exceeds %d at offset %d",
			errs.ErrMalformedHeader, errs.ErrBlobTooLarge, size, r.cfg.MaxHeaderSize, start)
	}

	if cap(r.hdrBuf) < int(size) {
		r.hdrBuf = make([]byte, size)
	}
	buf := r.hdrBuf[:size]
	n, err := io.ReadFull(r.r, buf)
	r.offset += int64(n)
	if err != nil {
		return nil, fmt.Errorf("%w: read %d of %d header bytes at offset %d: %w",
			errs.ErrMalformedHeader, n, size, start, err)
	}

	hdr := &osmpb.BlobHeader{}
	if err := proto.Unmarshal(buf, hdr); err != nil {
		return nil, fmt.Errorf("%w: decode at offset %d: %w", errs.ErrMalformedHeader, start, err)
	}
	if hdr.DataSize < 0 {
		return nil, fmt.Errorf("%w: negative datasize %d at offset %d", errs.ErrMalformedHeader, hdr.DataSize, start)
	}
	// IndexData aliases the reused header buffer.
	hdr.IndexData = bytes.Clone(hdr.IndexData)
	r.blobs++

	return hdr, nil
}

// ReadBlob reads the Blob announced by hdr and inflates it.
func (r *Reader) ReadBlob(hdr *osmpb.BlobHeader) (Payload, error) {
	size := int(hdr.DataSize)
	start := r.offset
	if size > r.cfg.MaxBlobSize {
		return Payload{}, fmt.Errorf("%w: datasize %d exceeds %d at offset %d",
			errs.ErrBlobTooLarge, size, r.cfg.MaxBlobSize, start)
	}

	bb := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(bb)

	buf := bb.Resize(size)
	n, err := io.ReadFull(r.r, buf)
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Payload{}, fmt.Errorf("%w: read %d of %d bytes at offset %d",
				errs.ErrTruncatedBlob, n, size, start)
		}

		return Payload{}, fmt.Errorf("read blob at offset %d: %w", start, err)
	}

	var blob osmpb.Blob
	if err := proto.Unmarshal(buf, &blob); err != nil {
		return Payload{}, fmt.Errorf("%w: offset %d: %w", errs.ErrMalformedBlob, start, err)
	}

	data, err := r.inflate(&blob)
	if err != nil {
		return Payload{}, fmt.Errorf("blob %d at offset %d: %w", r.blobs, start, err)
	}

	return Payload{Data: data, Compression: blob.Compression(), StoredSize: size}, nil
}

// inflate returns a copy of the blob's block that does not alias the pooled buffer.
func (r *Reader) inflate(blob *osmpb.Blob) ([]byte, error) {
	ct, data := blob.Payload()
	if data == nil {
		return nil, fmt.Errorf("%w: no data field set", errs.ErrMalformedBlob)
	}

	if ct == format.CompressionNone {
		return bytes.Clone(data), nil
	}

	rawSize := int(blob.RawSize)
	if rawSize > r.cfg.MaxBlobSize {
		return nil, fmt.Errorf("%w: raw_size %d exceeds %d", errs.ErrBlobTooLarge, rawSize, r.cfg.MaxBlobSize)
	}

	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrDecompression, err)
	}

	return codec.Decompress(data, rawSize, r.cfg.MaxBlobSize)
}
