package compress

import (
	"fmt"

	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
)

// Compressor compresses a primitive block or header block into blob payload bytes.
//
// Compression is only needed to build PBF streams (test fixtures, tooling); the
// parsing path uses Decompressor exclusively.
type Compressor interface {
	// Compress compresses data and returns a newly allocated slice owned by the caller.
	Compress(data []byte) ([]byte, error)
}

// Decompressor inflates a compressed blob payload.
type Decompressor interface {
	// Decompress inflates data into a newly allocated slice.
	//
	// rawSize is the decompressed size declared by the blob. When rawSize > 0 the
	// output must be exactly rawSize bytes, otherwise an error wrapping
	// errs.ErrDecompression is returned. When rawSize <= 0 the size is unknown and
	// the whole stream is inflated.
	//
	// maxSize bounds the inflated output; maxSize <= 0 means format.MaxBlobSize.
	// Exceeding it fails with an error wrapping errs.ErrBlobTooLarge.
	Decompress(data []byte, rawSize, maxSize int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec creates a Codec for the specified blob compression type.
func CreateCodec(compressionType format.CompressionType) (Codec, error) {
	switch compressionType { //nolint: exhaustive
	case format.CompressionNone:
		return NewNoOpCompressor(), nil
	case format.CompressionZlib:
		return NewZlibCompressor(), nil
	case format.CompressionZstd:
		return NewZstdCompressor(), nil
	case format.CompressionLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZlib: NewZlibCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// effectiveLimit resolves a caller supplied output bound.
func effectiveLimit(maxSize int) int {
	if maxSize <= 0 {
		return format.MaxBlobSize
	}

	return maxSize
}

// checkLimit rejects a declared raw size above the output bound before any
// memory is allocated for it.
func checkLimit(rawSize, maxSize int, algo format.CompressionType) error {
	if rawSize > maxSize {
		return fmt.Errorf("%w: %w: %s raw_size %d exceeds %d",
			errs.ErrDecompression, errs.ErrBlobTooLarge, algo, rawSize, maxSize)
	}

	return nil
}

// errOutputTooLarge reports an inflated stream that grew past maxSize.
func errOutputTooLarge(algo format.CompressionType, maxSize int) error {
	return fmt.Errorf("%w: %w: %s output exceeds %d bytes",
		errs.ErrDecompression, errs.ErrBlobTooLarge, algo, maxSize)
}

// checkSize verifies an inflated payload against the declared raw size.
func checkSize(out []byte, rawSize int, algo format.CompressionType) error {
	if rawSize > 0 && len(out) != rawSize {
		return fmt.Errorf("%w: %s inflated %d bytes, declared %d",
			errs.ErrDecompression, algo, len(out), rawSize)
	}

	return nil
}
