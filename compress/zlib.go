package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
)

// zlibReaderPool pools zlib readers; a pooled reader is re-armed with Reset.
var zlibReaderPool sync.Pool

// zlibWriterPool pools zlib writers for fixture and tooling compression.
var zlibWriterPool = sync.Pool{
	New: func() any {
		return zlib.NewWriter(nil)
	},
}

// ZlibCompressor handles zlib_data blobs, the compression used by virtually every
// PBF writer.
type ZlibCompressor struct{}

var _ Codec = (*ZlibCompressor)(nil)

// NewZlibCompressor creates a new zlib compressor.
func NewZlibCompressor() ZlibCompressor {
	return ZlibCompressor{}
}

// Compress compresses data with zlib at the default level.
func (c ZlibCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, _ := zlibWriterPool.Get().(*zlib.Writer)
	defer zlibWriterPool.Put(w)

	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compression failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates zlib data. With rawSize > 0 exactly rawSize bytes must come
// out of the stream. Either way the Adler-32 trailer is verified.
func (c ZlibCompressor) Decompress(data []byte, rawSize, maxSize int) ([]byte, error) {
	maxSize = effectiveLimit(maxSize)
	if err := checkLimit(rawSize, maxSize, format.CompressionZlib); err != nil {
		return nil, err
	}

	r, err := c.reader(data)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %w", errs.ErrDecompression, err)
	}
	defer zlibReaderPool.Put(r)

	if rawSize <= 0 {
		out, err := io.ReadAll(io.LimitReader(r, int64(maxSize)+1))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %w", errs.ErrDecompression, err)
		}
		if len(out) > maxSize {
			return nil, errOutputTooLarge(format.CompressionZlib, maxSize)
		}

		return out, nil
	}

	out := make([]byte, rawSize)
	n, err := io.ReadFull(r, out)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib inflated %d bytes, declared %d: %w",
			errs.ErrDecompression, n, rawSize, err)
	}

	// The stream must end exactly at rawSize; reaching EOF also checks the trailer.
	var extra [1]byte
	for {
		m, err := r.Read(extra[:])
		if m > 0 {
			return nil, fmt.Errorf("%w: %s stream longer than declared %d bytes",
				errs.ErrDecompression, format.CompressionZlib, rawSize)
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %w", errs.ErrDecompression, err)
		}
	}
}

func (c ZlibCompressor) reader(data []byte) (io.ReadCloser, error) {
	src := bytes.NewReader(data)
	if r, ok := zlibReaderPool.Get().(io.ReadCloser); ok {
		if err := r.(zlib.Resetter).Reset(src, nil); err != nil {
			// The next Reset re-arms it.
			zlibReaderPool.Put(r)
			return nil, err
		}

		return r, nil
	}

	return zlib.NewReader(src)
}
