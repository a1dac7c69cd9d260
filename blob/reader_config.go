package blob

import (
	"fmt"

	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
	"github.com/arloliu/nodepbf/internal/options"
)

// ReaderConfig holds the limits a Reader enforces on declared sizes.
type ReaderConfig struct {
	// MaxHeaderSize bounds the BlobHeader length prefix.
	MaxHeaderSize int
	// MaxBlobSize bounds both the Blob datasize and its declared raw size.
	MaxBlobSize int
}

// DefaultReaderConfig returns the limits recommended by the PBF format.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		MaxHeaderSize: format.MaxHeaderSize,
		MaxBlobSize:   format.MaxBlobSize,
	}
}

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*ReaderConfig]

// WithMaxHeaderSize sets the largest accepted BlobHeader length.
func WithMaxHeaderSize(n int) ReaderOption {
	return options.New(func(cfg *ReaderConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: max header size must be positive, got %d", errs.ErrInvalidConfig, n)
		}
		cfg.MaxHeaderSize = n

		return nil
	})
}

// WithMaxBlobSize sets the largest accepted Blob size, compressed or inflated.
func WithMaxBlobSize(n int) ReaderOption {
	return options.New(func(cfg *ReaderConfig) error {
		if n <= 0 {
			return fmt.Errorf("%w: max blob size must be positive, got %d", errs.ErrInvalidConfig, n)
		}
		cfg.MaxBlobSize = n

		return nil
	})
}
