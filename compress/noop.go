package compress

import "github.com/arloliu/nodepbf/format"

// NoOpCompressor passes raw blob payloads through unchanged.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data as-is. The returned slice shares memory with the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data as-is after checking it against rawSize and maxSize.
// The returned slice shares memory with the input.
func (c NoOpCompressor) Decompress(data []byte, rawSize, maxSize int) ([]byte, error) {
	if maxSize = effectiveLimit(maxSize); len(data) > maxSize {
		return nil, errOutputTooLarge(format.CompressionNone, maxSize)
	}
	if err := checkSize(data, rawSize, format.CompressionNone); err != nil {
		return nil, err
	}

	return data, nil
}
