package compress

// ZstdCompressor handles zstd_data blobs.
//
// The default build uses klauspost/compress/zstd; building with the gozstd tag
// switches to the cgo libzstd binding.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
