package nodepbf

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/arloliu/nodepbf/blob"
	"github.com/arloliu/nodepbf/block"
	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
	"github.com/arloliu/nodepbf/internal/intern"
	"github.com/arloliu/nodepbf/match"
	"github.com/arloliu/nodepbf/osmpb"
)

// parser owns the state shared by successive parses: the vocabulary, the
// string interner and the metrics.
type parser struct {
	cfg      *parserConfig
	logger   log.Logger
	metrics  *Metrics
	interner *intern.Table
}

func newParser(opts ...Option) (*parser, error) {
	cfg, err := newParserConfig(opts...)
	if err != nil {
		return nil, err
	}

	p := &parser{
		cfg:     cfg,
		logger:  cfg.logger,
		metrics: NewMetrics(cfg.registerer),
	}
	if cfg.StringInterning {
		p.interner = intern.NewTable(cfg.InternMaxEntries)
	}

	return p, nil
}

func (p *parser) newReader(r io.Reader) (*blob.Reader, error) {
	return blob.NewReader(r,
		blob.WithMaxHeaderSize(p.cfg.MaxHeaderSize),
		blob.WithMaxBlobSize(p.cfg.MaxBlobSize),
	)
}

// readHeader reads and validates the header blob. It returns io.EOF for an empty stream.
func (p *parser) readHeader(br *blob.Reader) (*osmpb.HeaderBlock, error) {
	header, err := blob.ReadHeader(br)
	if err != nil {
		return nil, err
	}
	p.metrics.observeBlob(format.BlobTypeHeader)

	level.Debug(p.logger).Log(
		"msg", "header accepted",
		"writing_program", header.WritingProgram,
		"required_features", strings.Join(header.RequiredFeatures, ","),
	)

	return header, nil
}

// walk decodes r and calls emit for every node matching filter. It returns the
// stream's header block, or nil for an empty stream.
func (p *parser) walk(r io.Reader, filter match.Filter, emit block.EmitFunc) (*osmpb.HeaderBlock, error) {
	br, err := p.newReader(r)
	if err != nil {
		return nil, err
	}

	header, err := p.readHeader(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			level.Debug(p.logger).Log("msg", "empty stream")
			return nil, nil
		}

		return nil, err
	}

	// Pairs are merged into the shared vocabulary only once the walk completes,
	// so a failed parse leaves it untouched.
	var scratch *match.Vocabulary
	if filter.IsEmpty() {
		scratch = match.NewVocabulary()
	}
	matcher := match.NewMatcher(filter, scratch).WithTaggedOnly(p.cfg.TaggedOnly)
	dec := block.NewDecoder(matcher, p.interner)

	var (
		total  block.Stats
		blocks int
	)
	for {
		hdr, err := br.NextHeader()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return header, err
		}
		p.metrics.observeBlob(hdr.Type)

		if hdr.Type != format.BlobTypeData {
			level.Warn(p.logger).Log(
				"msg", "stopping at non-data blob",
				"type", hdr.Type,
				"offset", br.Offset(),
				"err", errs.ErrUnexpectedBlockType,
			)

			break
		}

		payload, err := br.ReadBlob(hdr)
		if err != nil {
			return header, err
		}
		p.metrics.observePayload(payload)

		stats, err := dec.DecodeBlock(payload.Data, emit)
		p.metrics.observeBlock(stats)
		if err != nil {
			return header, fmt.Errorf("block %d: %w", blocks, err)
		}
		if stats.TruncatedBatches > 0 {
			level.Warn(p.logger).Log("msg", "tag list ended early, remaining nodes decoded without tags", "block", blocks)
		}
		level.Debug(p.logger).Log(
			"msg", "block decoded",
			"block", blocks,
			"compression", payload.Compression,
			"groups", stats.Groups,
			"nodes", stats.PlainNodes+stats.DenseNodes,
			"matched", stats.Matched,
		)

		total.Add(stats)
		blocks++
	}

	if scratch != nil {
		p.cfg.vocab.Merge(scratch)
	}

	level.Debug(p.logger).Log(
		"msg", "parse finished",
		"blocks", blocks,
		"plain_nodes", total.PlainNodes,
		"dense_nodes", total.DenseNodes,
		"matched", total.Matched,
		"discovery", matcher.Discovery(),
		"vocabulary_pairs", p.cfg.vocab.Len(),
	)

	return header, nil
}

func (p *parser) reset() {
	p.cfg.vocab.Reset()
	if p.interner != nil {
		p.interner.Reset()
	}
}
