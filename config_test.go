package nodepbf

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
	"github.com/arloliu/nodepbf/internal/intern"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, format.MaxHeaderSize, cfg.MaxHeaderSize)
	require.Equal(t, format.MaxBlobSize, cfg.MaxBlobSize)
	require.True(t, cfg.StringInterning)
	require.Equal(t, intern.DefaultMaxEntries, cfg.InternMaxEntries)
	require.False(t, cfg.TaggedOnly)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cfg *Config)
	}{
		{name: "zero header size", modify: func(cfg *Config) { cfg.MaxHeaderSize = 0 }},
		{name: "negative blob size", modify: func(cfg *Config) { cfg.MaxBlobSize = -1 }},
		{name: "negative intern entries", modify: func(cfg *Config) { cfg.InternMaxEntries = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			require.ErrorIs(t, cfg.Validate(), errs.ErrInvalidConfig)
		})
	}
}

func TestConfig_RegisterFlags(t *testing.T) {
	var cfg Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)

	require.NoError(t, fs.Parse([]string{"-pbf.max-blob-size=1024", "-pbf.tagged-only"}))
	require.Equal(t, 1024, cfg.MaxBlobSize)
	require.Equal(t, format.MaxHeaderSize, cfg.MaxHeaderSize)
	require.True(t, cfg.TaggedOnly)
	require.True(t, cfg.StringInterning)
}

func TestConfig_RegisterFlagsWithPrefix(t *testing.T) {
	var cfg Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlagsWithPrefix("import.", fs)

	require.NoError(t, fs.Parse([]string{"-import.pbf.string-interning=false"}))
	require.False(t, cfg.StringInterning)
	require.NotNil(t, fs.Lookup("import.pbf.intern-max-entries"))
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("max_blob_size: 2048\ntagged_only: true\n"))
	require.NoError(t, err)
	require.Equal(t, 2048, cfg.MaxBlobSize)
	require.True(t, cfg.TaggedOnly)
	// Absent fields keep their defaults.
	require.Equal(t, format.MaxHeaderSize, cfg.MaxHeaderSize)

	cfg, err = ParseConfig(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	_, err = ParseConfig([]byte("max_blob_szie: 10\n"))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = ParseConfig([]byte("max_header_size: 0\n"))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodepbf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("string_interning: false\nintern_max_entries: 0\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.False(t, cfg.StringInterning)
	require.Zero(t, cfg.InternMaxEntries)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWithConfig_LaterOptionsApply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBlobSize = 4096

	pc, err := newParserConfig(WithConfig(cfg), WithTaggedOnly(true))
	require.NoError(t, err)
	require.Equal(t, 4096, pc.MaxBlobSize)
	require.True(t, pc.TaggedOnly)
	require.NotNil(t, pc.vocab)
	require.NotNil(t, pc.logger)
}
