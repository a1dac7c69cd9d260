// Package errs defines the sentinel errors returned while decoding PBF containers.
//
// Callers should match with errors.Is; the returned errors wrap these sentinels
// with positional context.
package errs

import "errors"

// Framing errors.
var (
	// ErrMalformedHeader indicates a BlobHeader that could not be read or decoded.
	ErrMalformedHeader = errors.New("malformed blob header")
	// ErrTruncatedBlob indicates the stream ended before the declared blob size.
	ErrTruncatedBlob = errors.New("truncated blob")
	// ErrBlobTooLarge indicates a declared header or blob size above the configured limit.
	ErrBlobTooLarge = errors.New("blob exceeds maximum size")
	// ErrMalformedBlob indicates a Blob message that could not be decoded.
	ErrMalformedBlob = errors.New("malformed blob")
	// ErrDecompression indicates a compressed blob that failed to inflate to its declared size.
	ErrDecompression = errors.New("blob decompression failed")
)

// Container errors.
var (
	// ErrMissingHeaderBlock indicates the first blob is not an OSMHeader blob.
	ErrMissingHeaderBlock = errors.New("first blob is not a header block")
	// ErrUnsupportedFeature indicates the header block requires a capability this decoder lacks.
	ErrUnsupportedFeature = errors.New("unsupported required feature")
	// ErrUnexpectedBlockType marks a non-data blob where a data blob was expected.
	// It ends iteration cleanly and is only reported as a diagnostic.
	ErrUnexpectedBlockType = errors.New("unexpected blob type")
)

// Block errors.
var (
	// ErrMalformedBlock indicates a primitive block whose contents are inconsistent.
	ErrMalformedBlock = errors.New("malformed primitive block")
	// ErrStringIndexOutOfRange indicates a string table reference past the end of the table.
	ErrStringIndexOutOfRange = errors.New("string table index out of range")
)

// ErrInvalidConfig indicates a configuration value outside its accepted range.
var ErrInvalidConfig = errors.New("invalid config")
