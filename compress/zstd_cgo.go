//go:build gozstd

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"

	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
)

// Compress compresses data using the cgo zstd binding.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

// Decompress decompresses zstd data using the cgo zstd binding.
func (c ZstdCompressor) Decompress(data []byte, rawSize, maxSize int) ([]byte, error) {
	maxSize = effectiveLimit(maxSize)
	if err := checkLimit(rawSize, maxSize, format.CompressionZstd); err != nil {
		return nil, err
	}

	var dst []byte
	if rawSize > 0 {
		dst = make([]byte, 0, rawSize)
	}

	out, err := gozstd.Decompress(dst, data)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", errs.ErrDecompression, err)
	}
	if len(out) > maxSize {
		return nil, errOutputTooLarge(format.CompressionZstd, maxSize)
	}
	if err := checkSize(out, rawSize, format.CompressionZstd); err != nil {
		return nil, err
	}

	return out, nil
}
