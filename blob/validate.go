package blob

import (
	"errors"
	"fmt"
	"io"

	"github.com/gogo/protobuf/proto"

	"github.com/arloliu/nodepbf/errs"
	"github.com/arloliu/nodepbf/format"
	"github.com/arloliu/nodepbf/osmpb"
)

// ReadHeader reads the first blob of r and validates it as the stream header.
//
// It returns io.EOF for an empty stream. Any other failure means no data blob
// may be read from r.
func ReadHeader(r *Reader) (*osmpb.HeaderBlock, error) {
	hdr, err := r.NextHeader()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, err
	}
	if hdr.Type != format.BlobTypeHeader {
		return nil, fmt.Errorf("%w: got %q", errs.ErrMissingHeaderBlock, hdr.Type)
	}

	payload, err := r.ReadBlob(hdr)
	if err != nil {
		return nil, err
	}

	return ValidateHeaderBlock(payload.Data)
}

// ValidateHeaderBlock decodes a HeaderBlock and checks every required feature.
func ValidateHeaderBlock(data []byte) (*osmpb.HeaderBlock, error) {
	hb := &osmpb.HeaderBlock{}
	if err := proto.Unmarshal(data, hb); err != nil {
		return nil, fmt.Errorf("%w: header block: %w", errs.ErrMalformedBlob, err)
	}

	for _, feature := range hb.RequiredFeatures {
		if !format.IsSupportedFeature(feature) {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedFeature, feature)
		}
	}

	return hb, nil
}
