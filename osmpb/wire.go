package osmpb

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrWireType indicates a field encoded with a wire type its schema does not allow.
var ErrWireType = errors.New("osmpb: unexpected wire type")

// fieldFunc decodes the value of one field starting at b and returns the number of bytes consumed.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// unmarshalFields walks every field of a message and hands it to fn.
func unmarshalFields(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := fn(num, typ, b)
		if err != nil {
			return fmt.Errorf("field %d: %w", num, err)
		}
		b = b[n:]
	}

	return nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}

	return n, nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, ErrWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}

	return v, n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, ErrWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}

	return v, n, nil
}

// consumeRepeated decodes a repeated varint field in packed or unpacked form.
func consumeRepeated(typ protowire.Type, b []byte, fn func(uint64)) (int, error) {
	switch typ {
	case protowire.VarintType:
		v, n, err := consumeVarint(typ, b)
		if err != nil {
			return 0, err
		}
		fn(v)

		return n, nil
	case protowire.BytesType:
		packed, n, err := consumeBytes(typ, b)
		if err != nil {
			return 0, err
		}
		for len(packed) > 0 {
			v, m := protowire.ConsumeVarint(packed)
			if m < 0 {
				return 0, protowire.ParseError(m)
			}
			fn(v)
			packed = packed[m:]
		}

		return n, nil
	default:
		return 0, ErrWireType
	}
}

func sint64(v uint64) int64 { return protowire.DecodeZigZag(v) }
func sint32(v uint64) int32 { return int32(protowire.DecodeZigZag(v & 0xffffffff)) } //nolint:gosec
func int32v(v uint64) int32 { return int32(v) }                                      //nolint:gosec

func encSint64(v int64) uint64 { return protowire.EncodeZigZag(v) }
func encSint32(v int32) uint64 { return protowire.EncodeZigZag(int64(v)) & 0xffffffff }
func encInt32(v int32) uint64  { return uint64(int64(v)) } //nolint:gosec
func encUint32(v uint32) uint64 {
	return uint64(v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendPacked appends vals as one packed field; empty slices are omitted.
func appendPacked[T any](b []byte, num protowire.Number, vals []T, enc func(T) uint64) []byte {
	if len(vals) == 0 {
		return b
	}

	var packed []byte
	for _, v := range vals {
		packed = protowire.AppendVarint(packed, enc(v))
	}

	return appendBytesField(b, num, packed)
}

type marshaler interface {
	Marshal() ([]byte, error)
}

func appendMessageField(b []byte, num protowire.Number, m marshaler) ([]byte, error) {
	data, err := m.Marshal()
	if err != nil {
		return nil, err
	}

	return appendBytesField(b, num, data), nil
}
