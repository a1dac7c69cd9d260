package osmpb

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/arloliu/nodepbf/format"
)

// BlobHeader precedes every Blob and declares its type and encoded size.
type BlobHeader struct {
	Type      string
	IndexData []byte
	DataSize  int32
}

var _ proto.Message = (*BlobHeader)(nil)

func (m *BlobHeader) Reset()         { *m = BlobHeader{} }
func (m *BlobHeader) String() string { return fmt.Sprintf("%+v", *m) }
func (*BlobHeader) ProtoMessage()    {}

// Unmarshal decodes a BlobHeader from its wire form.
func (m *BlobHeader) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(typ, b)
			m.Type = string(v)

			return n, err
		case 2:
			v, n, err := consumeBytes(typ, b)
			m.IndexData = v

			return n, err
		case 3:
			v, n, err := consumeVarint(typ, b)
			m.DataSize = int32v(v)

			return n, err
		default:
			return skipField(num, typ, b)
		}
	})
}

// Marshal encodes the BlobHeader.
func (m *BlobHeader) Marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Type)
	if m.IndexData != nil {
		b = appendBytesField(b, 2, m.IndexData)
	}
	b = appendVarintField(b, 3, encInt32(m.DataSize))

	return b, nil
}

// Blob carries one block, either raw or compressed. Exactly one data field is set.
type Blob struct {
	Raw       []byte
	RawSize   int32
	ZlibData  []byte
	LzmaData  []byte
	Bzip2Data []byte
	LZ4Data   []byte
	ZstdData  []byte
}

var _ proto.Message = (*Blob)(nil)

func (m *Blob) Reset() { *m = Blob{} }
func (m *Blob) String() string {
	return fmt.Sprintf("Blob{raw_size:%d compression:%s}", m.RawSize, m.Compression())
}
func (*Blob) ProtoMessage() {}

// Compression reports which data field is populated. A blob with no data field
// reports format.CompressionNone with an empty payload.
func (m *Blob) Compression() format.CompressionType {
	ct, _ := m.Payload()
	return ct
}

// Payload returns the populated data field together with its compression type.
func (m *Blob) Payload() (format.CompressionType, []byte) {
	switch {
	case m.Raw != nil:
		return format.CompressionNone, m.Raw
	case m.ZlibData != nil:
		return format.CompressionZlib, m.ZlibData
	case m.LZ4Data != nil:
		return format.CompressionLZ4, m.LZ4Data
	case m.ZstdData != nil:
		return format.CompressionZstd, m.ZstdData
	case m.LzmaData != nil:
		return format.CompressionLZMA, m.LzmaData
	case m.Bzip2Data != nil:
		return format.CompressionBZip, m.Bzip2Data
	default:
		return format.CompressionNone, nil
	}
}

// Unmarshal decodes a Blob from its wire form. Data fields alias b.
func (m *Blob) Unmarshal(b []byte) error {
	return unmarshalFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		var dst *[]byte
		switch num {
		case 1:
			dst = &m.Raw
		case 2:
			v, n, err := consumeVarint(typ, b)
			m.RawSize = int32v(v)

			return n, err
		case 3:
			dst = &m.ZlibData
		case 4:
			dst = &m.LzmaData
		case 5:
			dst = &m.Bzip2Data
		case 6:
			dst = &m.LZ4Data
		case 7:
			dst = &m.ZstdData
		default:
			return skipField(num, typ, b)
		}

		v, n, err := consumeBytes(typ, b)
		if v == nil && err == nil {
			v = []byte{}
		}
		*dst = v

		return n, err
	})
}

// Marshal encodes the Blob.
func (m *Blob) Marshal() ([]byte, error) {
	var b []byte
	if m.Raw != nil {
		b = appendBytesField(b, 1, m.Raw)
	}
	if m.RawSize != 0 {
		b = appendVarintField(b, 2, encInt32(m.RawSize))
	}
	fields := []struct {
		num  protowire.Number
		data []byte
	}{
		{3, m.ZlibData},
		{4, m.LzmaData},
		{5, m.Bzip2Data},
		{6, m.LZ4Data},
		{7, m.ZstdData},
	}
	for _, f := range fields {
		if f.data != nil {
			b = appendBytesField(b, f.num, f.data)
		}
	}

	return b, nil
}
