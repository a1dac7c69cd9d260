package nodepbf

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
	"github.com/arloliu/nodepbf/internal/intern"
)

// Config holds the decoding limits and behaviour switches of a parser.
type Config struct {
	// MaxHeaderSize bounds the length of each BlobHeader in bytes.
	MaxHeaderSize int `yaml:"max_header_size"`

	// MaxBlobSize bounds each Blob, both as stored and once inflated.
	MaxBlobSize int `yaml:"max_blob_size"`

	// StringInterning shares string table entries across primitive blocks.
	StringInterning bool `yaml:"string_interning"`

	// InternMaxEntries caps the number of distinct strings kept for interning.
	// Zero means unbounded.
	InternMaxEntries int `yaml:"intern_max_entries"`

	// TaggedOnly drops untagged nodes in discovery mode.
	TaggedOnly bool `yaml:"tagged_only"`
}

// DefaultConfig returns the configuration used when no option overrides it.
func DefaultConfig() Config {
	return Config{
		MaxHeaderSize:    format.MaxHeaderSize,
		MaxBlobSize:      format.MaxBlobSize,
		StringInterning:  true,
		InternMaxEntries: intern.DefaultMaxEntries,
	}
}

// RegisterFlags registers the config flags without a prefix.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("", f)
}

// RegisterFlagsWithPrefix registers the config flags, each name prefixed with prefix.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	def := DefaultConfig()

	f.IntVar(
		&cfg.MaxHeaderSize,
		prefix+"pbf.max-header-size",
		def.MaxHeaderSize,
		"Maximum size in bytes of a blob header.",
	)
	f.IntVar(
		&cfg.MaxBlobSize,
		prefix+"pbf.max-blob-size",
		def.MaxBlobSize,
		"Maximum size in bytes of a blob, compressed or inflated.",
	)
	f.BoolVar(
		&cfg.StringInterning,
		prefix+"pbf.string-interning",
		def.StringInterning,
		"Share string table entries across primitive blocks.",
	)
	f.IntVar(
		&cfg.InternMaxEntries,
		prefix+"pbf.intern-max-entries",
		def.InternMaxEntries,
		"Maximum number of distinct strings kept for interning. 0 means unbounded.",
	)
	f.BoolVar(
		&cfg.TaggedOnly,
		prefix+"pbf.tagged-only",
		def.TaggedOnly,
		"In discovery mode, only return nodes that carry at least one tag.",
	)
}

// Validate checks every limit.
func (cfg *Config) Validate() error {
	if cfg.MaxHeaderSize <= 0 {
		return fmt.Errorf("%w: max_header_size must be positive, got %d", errs.ErrInvalidConfig, cfg.MaxHeaderSize)
	}
	if cfg.MaxBlobSize <= 0 {
		return fmt.Errorf("%w: max_blob_size must be positive, got %d", errs.ErrInvalidConfig, cfg.MaxBlobSize)
	}
	if cfg.InternMaxEntries < 0 {
		return fmt.Errorf("%w: intern_max_entries must not be negative, got %d", errs.ErrInvalidConfig, cfg.InternMaxEntries)
	}

	return nil
}

// LoadConfig reads a YAML config file. Fields absent from the file keep their
// default values; unknown fields are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes a YAML config document on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
