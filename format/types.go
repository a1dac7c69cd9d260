package format

type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents a raw, uncompressed blob.
	CompressionZlib CompressionType = 0x2 // CompressionZlib represents zlib (deflate) compression.
	CompressionLZ4  CompressionType = 0x3 // CompressionLZ4 represents LZ4 block compression.
	CompressionZstd CompressionType = 0x4 // CompressionZstd represents Zstandard compression.
	CompressionLZMA CompressionType = 0x5 // CompressionLZMA represents LZMA compression (not decodable).
	CompressionBZip CompressionType = 0x6 // CompressionBZip represents the obsolete bzip2 field (not decodable).
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZlib:
		return "Zlib"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZMA:
		return "LZMA"
	case CompressionBZip:
		return "BZip2"
	default:
		return "Unknown"
	}
}

// Blob types carried in BlobHeader.type.
const (
	BlobTypeHeader = "OSMHeader"
	BlobTypeData   = "OSMData"
)

// Required features this decoder understands.
const (
	FeatureOsmSchema  = "OsmSchema-V0.6"
	FeatureDenseNodes = "DenseNodes"
)

// SupportedFeatures lists every required feature accepted in a header block.
var SupportedFeatures = []string{FeatureOsmSchema, FeatureDenseNodes}

// IsSupportedFeature reports whether a header block may require feature.
func IsSupportedFeature(feature string) bool {
	for _, f := range SupportedFeatures {
		if f == feature {
			return true
		}
	}

	return false
}

// Framing limits and primitive block defaults.
const (
	// MaxHeaderSize is the largest BlobHeader accepted by default (64 KiB).
	MaxHeaderSize = 64 * 1024
	// MaxBlobSize is the largest Blob payload accepted by default (32 MiB).
	MaxBlobSize = 32 * 1024 * 1024

	DefaultGranularity     = 100
	DefaultDateGranularity = 1000

	// NanoDegrees is the number of nanodegrees in one degree.
	NanoDegrees = 1e9
)
