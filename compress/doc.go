// Package compress provides the decompression codecs for PBF blob payloads.
//
// A Blob message stores its payload in exactly one of several fields. Each field
// maps to a format.CompressionType and a Codec:
//
//	raw        -> format.CompressionNone  (NoOpCompressor)
//	zlib_data  -> format.CompressionZlib  (ZlibCompressor, klauspost/compress/zlib)
//	lz4_data   -> format.CompressionLZ4   (LZ4Compressor, pierrec/lz4 block)
//	zstd_data  -> format.CompressionZstd  (ZstdCompressor, klauspost zstd or gozstd)
//
// lzma_data and the obsolete bzip2 field have no codec.
//
// Compressed blobs declare their decompressed size (raw_size). Decompress takes
// that size and fails with errs.ErrDecompression when the inflated output differs,
// since a blob that does not inflate to its declared size cannot be trusted.
// The maxSize argument bounds the output whether or not raw_size is declared.
//
// Usage:
//
//	codec, err := compress.GetCodec(format.CompressionZlib)
//	if err != nil {
//	    return err
//	}
//	data, err := codec.Decompress(blob.ZlibData, int(blob.RawSize), maxBlobSize)
//
// # Thread Safety
//
// All codecs are stateless values backed by sync.Pool'd readers and writers and
// are safe for concurrent use.
package compress
