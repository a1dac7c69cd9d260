package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// errIncompressible is returned by LZ4 block compression when the input does not shrink.
var errIncompressible = errors.New("lz4: data is not compressible")

// LZ4Compressor handles lz4_data blobs stored as a single LZ4 block.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data into one LZ4 block using a pooled compressor.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errIncompressible
	}

	return dst[:n], nil
}

// Decompress decompresses one LZ4 block.
//
// With a declared rawSize the destination is allocated exactly once. Without it
// the buffer starts at 4x the input and doubles on ErrInvalidSourceShortBuffer,
// up to maxSize.
func (c LZ4Compressor) Decompress(data []byte, rawSize, maxSize int) ([]byte, error) {
	maxSize = effectiveLimit(maxSize)
	if err := checkLimit(rawSize, maxSize, format.CompressionLZ4); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, checkSize(nil, rawSize, format.CompressionLZ4)
	}

	if rawSize > 0 {
		buf := make([]byte, rawSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", errs.ErrDecompression, err)
		}
		if err := checkSize(buf[:n], rawSize, format.CompressionLZ4); err != nil {
			return nil, err
		}

		return buf, nil
	}

	bufSize := min(len(data)*4, maxSize)
	for {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, fmt.Errorf("%w: lz4: %w", errs.ErrDecompression, err)
		}
		if bufSize >= maxSize {
			return nil, errOutputTooLarge(format.CompressionLZ4, maxSize)
		}
		bufSize = min(bufSize*2, maxSize)
	}
}
