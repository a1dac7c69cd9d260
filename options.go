package nodepbf

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/internal/options"
	"github.com/arloliu/nodepbf/match"
)

// parserConfig collects everything options can set.
type parserConfig struct {
	Config

	logger     log.Logger
	registerer prometheus.Registerer
	vocab      *match.Vocabulary
}

func newParserConfig(opts ...Option) (*parserConfig, error) {
	pc := &parserConfig{
		Config: DefaultConfig(),
		logger: log.NewNopLogger(),
	}
	if err := options.Apply(pc, opts...); err != nil {
		return nil, err
	}
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	if pc.vocab == nil {
		pc.vocab = match.NewVocabulary()
	}

	return pc, nil
}

// Option configures Parse and Open.
type Option = options.Option[*parserConfig]

// WithConfig replaces the whole Config. Options after it still apply.
func WithConfig(cfg Config) Option {
	return options.NoError(func(pc *parserConfig) {
		pc.Config = cfg
	})
}

// WithLogger sets the go-kit logger for diagnostics.
func WithLogger(logger log.Logger) Option {
	return options.New(func(pc *parserConfig) error {
		if logger == nil {
			return fmt.Errorf("%w: nil logger", errs.ErrInvalidConfig)
		}
		pc.logger = logger

		return nil
	})
}

// WithRegisterer registers the decoder metrics with reg.
// Without it the metrics are still counted but never exported.
func WithRegisterer(reg prometheus.Registerer) Option {
	return options.NoError(func(pc *parserConfig) {
		pc.registerer = reg
	})
}

// WithVocabulary makes discovery mode record pairs into v instead of a
// parser-owned vocabulary.
func WithVocabulary(v *match.Vocabulary) Option {
	return options.New(func(pc *parserConfig) error {
		if v == nil {
			return fmt.Errorf("%w: nil vocabulary", errs.ErrInvalidConfig)
		}
		pc.vocab = v

		return nil
	})
}

// WithMaxBlobSize sets Config.MaxBlobSize.
func WithMaxBlobSize(n int) Option {
	return options.NoError(func(pc *parserConfig) {
		pc.MaxBlobSize = n
	})
}

// WithMaxHeaderSize sets Config.MaxHeaderSize.
func WithMaxHeaderSize(n int) Option {
	return options.NoError(func(pc *parserConfig) {
		pc.MaxHeaderSize = n
	})
}

// WithStringInterning sets Config.StringInterning.
func WithStringInterning(enabled bool) Option {
	return options.NoError(func(pc *parserConfig) {
		pc.StringInterning = enabled
	})
}

// WithTaggedOnly sets Config.TaggedOnly.
func WithTaggedOnly(enabled bool) Option {
	return options.NoError(func(pc *parserConfig) {
		pc.TaggedOnly = enabled
	})
}
