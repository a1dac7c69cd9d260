// Package nodepbf extracts nodes from OpenStreetMap PBF files.
//
// A PBF file is a sequence of length-prefixed blobs: one OSMHeader blob followed
// by OSMData blobs holding primitive blocks. nodepbf decodes the node groups of
// those blocks, plain and dense, and returns the nodes whose tags match a filter.
//
// # Filter and discovery modes
//
// A filter maps tag keys to accepted values; "*" accepts any value of a key.
// A node matches when any of its keys is in the filter with an accepted value:
//
//	filter := match.NewFilter(map[string][]string{
//	    "amenity": {"cafe", "bar"},
//	    "shop":    {match.Wildcard},
//	})
//	nodes, err := nodepbf.Parse(r, filter)
//
// An empty filter selects discovery mode: every node is returned and every tag
// key/value pair seen is recorded in a match.Vocabulary.
//
//	f, err := nodepbf.Open("city.osm.pbf")
//	defer f.Close()
//	vocab, err := f.Tags(false)
//	for _, k := range vocab.Keys() {
//	    fmt.Println(k, vocab.Values(k))
//	}
//
// # Package Structure
//
// This package wraps the blob (framing, header validation) and block (primitive
// block decoding) packages. Use them directly for custom pipelines.
package nodepbf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/nodepbf/entity"
	"github.com/arloliu/nodepbf/match"
	"github.com/arloliu/nodepbf/osmpb"
)

const readBufferSize = 256 * 1024

// Parse decodes the PBF stream r and returns every node matching filter.
//
// On any framing or schema error no nodes are returned. A stream that ends at
// a non-data blob returns the nodes decoded so far.
func Parse(r io.Reader, filter match.Filter, opts ...Option) ([]entity.Node, error) {
	p, err := newParser(opts...)
	if err != nil {
		return nil, err
	}

	var nodes []entity.Node
	_, err = p.walk(r, filter, func(n entity.Node) error {
		nodes = append(nodes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

// File is an open PBF file that can be parsed repeatedly.
//
// The discovery vocabulary persists across parses until Reset.
//
// Note: File is NOT thread-safe.
type File struct {
	f      *os.File
	p      *parser
	header *osmpb.HeaderBlock
}

// Open opens the PBF file at path.
func Open(path string, opts ...Option) (*File, error) {
	p, err := newParser(opts...)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pbf: %w", err)
	}

	return &File{f: f, p: p}, nil
}

// rewind positions the file at its first byte.
func (f *File) rewind() (io.Reader, error) {
	if _, err := f.f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind pbf: %w", err)
	}

	return bufio.NewReaderSize(f.f, readBufferSize), nil
}

// Walk decodes the whole file from the start and calls fn for every node
// matching filter. An error from fn stops the walk and is returned.
//
// In discovery mode the vocabulary only gains the file's pairs when the walk
// completes without error.
func (f *File) Walk(filter match.Filter, fn func(entity.Node) error) error {
	r, err := f.rewind()
	if err != nil {
		return err
	}

	header, err := f.p.walk(r, filter, fn)
	if header != nil {
		f.header = header
	}

	return err
}

// Parse decodes the whole file from the start and returns every node matching filter.
func (f *File) Parse(filter match.Filter) ([]entity.Node, error) {
	var nodes []entity.Node
	err := f.Walk(filter, func(n entity.Node) error {
		nodes = append(nodes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

// Header returns the validated header block, reading it when no parse has done so yet.
// It returns nil for an empty file.
func (f *File) Header() (*osmpb.HeaderBlock, error) {
	if f.header != nil {
		return f.header, nil
	}

	r, err := f.rewind()
	if err != nil {
		return nil, err
	}
	br, err := f.p.newReader(r)
	if err != nil {
		return nil, err
	}

	header, err := f.p.readHeader(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, err
	}
	f.header = header

	return header, nil
}

// Vocabulary returns the discovery vocabulary accumulated so far.
func (f *File) Vocabulary() *match.Vocabulary {
	return f.p.cfg.vocab
}

// Tags returns the vocabulary of every tag pair in the file. A discovery parse
// runs when the vocabulary is empty or refresh is set; a successful refresh
// replaces the previous contents. On error the vocabulary is left as it was.
func (f *File) Tags(refresh bool) (*match.Vocabulary, error) {
	vocab := f.p.cfg.vocab
	if !refresh && !vocab.IsEmpty() {
		return vocab, nil
	}

	fresh := match.NewVocabulary()
	f.p.cfg.vocab = fresh
	err := f.Walk(nil, func(entity.Node) error { return nil })
	f.p.cfg.vocab = vocab
	if err != nil {
		return nil, err
	}

	vocab.Reset()
	vocab.Merge(fresh)

	return vocab, nil
}

// Reset clears the vocabulary, the interned strings and the cached header.
func (f *File) Reset() {
	f.p.reset()
	f.header = nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}
